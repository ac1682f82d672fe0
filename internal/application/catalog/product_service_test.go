package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindDiscounted(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockProductRepository) FindActiveIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockProductRepository) FindActiveIDsBySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, subcategoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockProductRepository) BulkUpdateDiscount(ctx context.Context, ids []uuid.UUID, percentage int) (int64, error) {
	args := m.Called(ctx, ids, percentage)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ResetActiveDiscounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockSubcategoryRepository is a mock implementation of catalog.SubcategoryRepository
type MockSubcategoryRepository struct {
	mock.Mock
}

func (m *MockSubcategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Subcategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Subcategory), args.Error(1)
}

func (m *MockSubcategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Subcategory, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Subcategory), args.Error(1)
}

func (m *MockSubcategoryRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Subcategory, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Subcategory), args.Error(1)
}

func (m *MockSubcategoryRepository) Save(ctx context.Context, subcategory *catalog.Subcategory) error {
	args := m.Called(ctx, subcategory)
	return args.Error(0)
}

func (m *MockSubcategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubcategoryRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func newProductService() (*ProductService, *MockProductRepository, *MockCategoryRepository, *MockSubcategoryRepository) {
	productRepo := new(MockProductRepository)
	categoryRepo := new(MockCategoryRepository)
	subcategoryRepo := new(MockSubcategoryRepository)
	return NewProductService(productRepo, categoryRepo, subcategoryRepo), productRepo, categoryRepo, subcategoryRepo
}

func TestProductServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a product", func(t *testing.T) {
		service, productRepo, _, _ := newProductService()

		productRepo.On("ExistsByCode", ctx, "SKU-001").Return(false, nil)
		productRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		response, err := service.Create(ctx, CreateProductRequest{
			Code:  "SKU-001",
			Name:  "Winter Jacket",
			Price: decimal.NewFromFloat(99.90),
		})
		require.NoError(t, err)
		assert.Equal(t, "SKU-001", response.Code)
		assert.Equal(t, "active", response.Status)
		assert.Equal(t, 0, response.DiscountPercentage)

		productRepo.AssertExpectations(t)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		service, productRepo, _, _ := newProductService()

		productRepo.On("ExistsByCode", ctx, "SKU-001").Return(true, nil)

		_, err := service.Create(ctx, CreateProductRequest{
			Code: "SKU-001", Name: "Winter Jacket",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		service, productRepo, categoryRepo, _ := newProductService()
		categoryID := uuid.New()

		productRepo.On("ExistsByCode", ctx, "SKU-001").Return(false, nil)
		categoryRepo.On("FindByID", ctx, categoryID).Return(nil, shared.ErrNotFound)

		_, err := service.Create(ctx, CreateProductRequest{
			Code: "SKU-001", Name: "Winter Jacket", CategoryIDs: []uuid.UUID{categoryID},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Category not found")
	})

	t.Run("assigns categories on create", func(t *testing.T) {
		service, productRepo, categoryRepo, _ := newProductService()
		category, err := catalog.NewCategory("OUTERWEAR", "Outerwear")
		require.NoError(t, err)

		productRepo.On("ExistsByCode", ctx, "SKU-001").Return(false, nil)
		categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		productRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		response, err := service.Create(ctx, CreateProductRequest{
			Code: "SKU-001", Name: "Winter Jacket", CategoryIDs: []uuid.UUID{category.ID},
		})
		require.NoError(t, err)
		assert.Contains(t, response.Categories, category.ID.String())
	})
}

func TestProductServiceList(t *testing.T) {
	ctx := context.Background()

	t.Run("lists discounted products", func(t *testing.T) {
		service, productRepo, _, _ := newProductService()

		discounted, err := catalog.NewProduct("SKU-001", "Winter Jacket", decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, discounted.SetDiscountPercentage(25))

		productRepo.On("FindDiscounted", ctx, DefaultDiscountedLimit).
			Return([]catalog.Product{*discounted}, nil)

		responses, total, err := service.List(ctx, ProductListFilter{Discounted: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, responses, 1)
		assert.Equal(t, 25, responses[0].DiscountPercentage)
		assert.True(t, responses[0].DiscountedPrice.Equal(decimal.NewFromInt(75)))
	})

	t.Run("lists with pagination", func(t *testing.T) {
		service, productRepo, _, _ := newProductService()

		productRepo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).
			Return([]catalog.Product{}, nil)
		productRepo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).
			Return(int64(0), nil)

		_, total, err := service.List(ctx, ProductListFilter{Page: 2, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("passes sort options to the repository", func(t *testing.T) {
		service, productRepo, _, _ := newProductService()

		sorted := mock.MatchedBy(func(f shared.Filter) bool {
			return f.OrderBy == "price" && f.OrderDir == "desc"
		})
		productRepo.On("FindAll", ctx, sorted).Return([]catalog.Product{}, nil)
		productRepo.On("Count", ctx, sorted).Return(int64(0), nil)

		_, _, err := service.List(ctx, ProductListFilter{OrderBy: "price", OrderDir: "desc"})
		require.NoError(t, err)
		productRepo.AssertExpectations(t)
	})
}

func TestProductServiceStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates a product", func(t *testing.T) {
		service, productRepo, _, _ := newProductService()

		product, err := catalog.NewProduct("SKU-001", "Winter Jacket", decimal.NewFromInt(100))
		require.NoError(t, err)

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)

		response, err := service.Deactivate(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "inactive", response.Status)
	})

	t.Run("propagates not found", func(t *testing.T) {
		service, productRepo, _, _ := newProductService()
		id := uuid.New()

		productRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := service.Activate(ctx, id)
		require.Error(t, err)
	})
}

func TestCategoryServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a category", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		subcategoryRepo := new(MockSubcategoryRepository)
		service := NewCategoryService(categoryRepo, subcategoryRepo)

		categoryRepo.On("ExistsByCode", ctx, "OUTERWEAR").Return(false, nil)
		categoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		response, err := service.Create(ctx, CreateCategoryRequest{
			Code: "OUTERWEAR", Name: "Outerwear",
		})
		require.NoError(t, err)
		assert.Equal(t, "OUTERWEAR", response.Code)
	})

	t.Run("creates a subcategory under an existing parent", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		subcategoryRepo := new(MockSubcategoryRepository)
		service := NewCategoryService(categoryRepo, subcategoryRepo)

		parent, err := catalog.NewCategory("OUTERWEAR", "Outerwear")
		require.NoError(t, err)

		categoryRepo.On("FindByID", ctx, parent.ID).Return(parent, nil)
		subcategoryRepo.On("ExistsByCode", ctx, "JACKETS").Return(false, nil)
		subcategoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Subcategory")).Return(nil)

		response, err := service.CreateSubcategory(ctx, CreateSubcategoryRequest{
			CategoryID: parent.ID, Code: "JACKETS", Name: "Jackets",
		})
		require.NoError(t, err)
		assert.Equal(t, parent.ID, response.CategoryID)
	})

	t.Run("rejects a subcategory with a missing parent", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		subcategoryRepo := new(MockSubcategoryRepository)
		service := NewCategoryService(categoryRepo, subcategoryRepo)
		parentID := uuid.New()

		categoryRepo.On("FindByID", ctx, parentID).Return(nil, shared.ErrNotFound)

		_, err := service.CreateSubcategory(ctx, CreateSubcategoryRequest{
			CategoryID: parentID, Code: "JACKETS", Name: "Jackets",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Parent category not found")
	})
}
