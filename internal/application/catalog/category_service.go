package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryService handles category and subcategory operations
type CategoryService struct {
	categoryRepo    catalog.CategoryRepository
	subcategoryRepo catalog.SubcategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	subcategoryRepo catalog.SubcategoryRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo:    categoryRepo,
		subcategoryRepo: subcategoryRepo,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
	}

	category, err := catalog.NewCategory(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := category.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != nil {
		category.SetSortOrder(*req.SortOrder)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// List retrieves all categories
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx, shared.Filter{OrderBy: "sort_order", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}

	return ToCategoryResponses(categories), nil
}

// Update updates a category's basic information
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := category.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := category.Description
	if req.Description != nil {
		description = *req.Description
	}
	if err := category.Update(name, description); err != nil {
		return nil, err
	}
	if req.SortOrder != nil {
		category.SetSortOrder(*req.SortOrder)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// CreateSubcategory creates a subcategory under an existing category
func (s *CategoryService) CreateSubcategory(ctx context.Context, req CreateSubcategoryRequest) (*SubcategoryResponse, error) {
	parent, err := s.categoryRepo.FindByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
		}
		return nil, err
	}

	exists, err := s.subcategoryRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Subcategory with this code already exists")
	}

	subcategory, err := catalog.NewSubcategory(parent, req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := subcategory.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}

	if err := s.subcategoryRepo.Save(ctx, subcategory); err != nil {
		return nil, err
	}

	response := ToSubcategoryResponse(subcategory)
	return &response, nil
}

// ListSubcategories retrieves the subcategories of a category
func (s *CategoryService) ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]SubcategoryResponse, error) {
	subcategories, err := s.subcategoryRepo.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	return ToSubcategoryResponses(subcategories), nil
}
