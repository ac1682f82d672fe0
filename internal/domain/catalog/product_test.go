package catalog

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("SKU-001", "Test Product", decimal.NewFromFloat(99.90))
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.Equal(t, "SKU-001", product.Code)
		assert.Equal(t, "Test Product", product.Name)
		assert.True(t, product.Price.Equal(decimal.NewFromFloat(99.90)))
		assert.Equal(t, 0, product.DiscountPercentage)
		assert.Equal(t, ProductStatusActive, product.Status)
		assert.Empty(t, product.Categories)
		assert.Empty(t, product.Subcategories)
		assert.NotEmpty(t, product.ID)
		assert.Equal(t, 1, product.GetVersion())
	})

	t.Run("converts code to uppercase", func(t *testing.T) {
		product, err := NewProduct("sku-001", "Test Product", decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "SKU-001", product.Code)
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct("SKU-002", "Test Product", decimal.Zero)
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewProduct("", "Test Product", decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code cannot be empty")
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		_, err := NewProduct("SKU@001", "Test Product", decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can only contain letters")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("SKU-001", "", decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with name too long", func(t *testing.T) {
		_, err := NewProduct("SKU-001", strings.Repeat("a", 201), decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 200 characters")
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("SKU-001", "Test Product", decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})
}

func TestProductCategories(t *testing.T) {
	product, err := NewProduct("SKU-001", "Test Product", decimal.Zero)
	require.NoError(t, err)

	categoryID := uuid.New()
	subcategoryID := uuid.New()

	t.Run("assigns and removes a category", func(t *testing.T) {
		product.AssignCategory(categoryID)
		assert.True(t, product.InCategory(categoryID))

		product.AssignCategory(categoryID)
		assert.Len(t, product.Categories, 1)

		product.RemoveCategory(categoryID)
		assert.False(t, product.InCategory(categoryID))
	})

	t.Run("assigns and removes a subcategory", func(t *testing.T) {
		product.AssignSubcategory(subcategoryID)
		assert.True(t, product.InSubcategory(subcategoryID))

		product.RemoveSubcategory(subcategoryID)
		assert.False(t, product.InSubcategory(subcategoryID))
	})

	t.Run("removing an unassigned category is a no-op", func(t *testing.T) {
		version := product.GetVersion()
		product.RemoveCategory(uuid.New())
		assert.Equal(t, version, product.GetVersion())
	})
}

func TestProductDiscount(t *testing.T) {
	t.Run("sets the effective discount", func(t *testing.T) {
		product, err := NewProduct("SKU-001", "Test Product", decimal.NewFromInt(200))
		require.NoError(t, err)
		product.ClearDomainEvents()

		require.NoError(t, product.SetDiscountPercentage(25))
		assert.Equal(t, 25, product.DiscountPercentage)
		assert.True(t, product.IsDiscounted())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductDiscountChanged, events[0].EventType())
	})

	t.Run("setting the same discount emits no event", func(t *testing.T) {
		product, err := NewProduct("SKU-001", "Test Product", decimal.NewFromInt(200))
		require.NoError(t, err)
		require.NoError(t, product.SetDiscountPercentage(25))
		product.ClearDomainEvents()

		require.NoError(t, product.SetDiscountPercentage(25))
		assert.Empty(t, product.GetDomainEvents())
	})

	t.Run("rejects out-of-range percentages", func(t *testing.T) {
		product, err := NewProduct("SKU-001", "Test Product", decimal.NewFromInt(200))
		require.NoError(t, err)

		require.Error(t, product.SetDiscountPercentage(-1))
		require.Error(t, product.SetDiscountPercentage(101))
	})

	t.Run("computes the discounted price", func(t *testing.T) {
		product, err := NewProduct("SKU-001", "Test Product", decimal.NewFromInt(200))
		require.NoError(t, err)

		assert.True(t, product.DiscountedPrice().Equal(decimal.NewFromInt(200)))

		require.NoError(t, product.SetDiscountPercentage(25))
		assert.True(t, product.DiscountedPrice().Equal(decimal.NewFromInt(150)))

		require.NoError(t, product.SetDiscountPercentage(100))
		assert.True(t, product.DiscountedPrice().IsZero())
	})
}

func TestProductStatus(t *testing.T) {
	product, err := NewProduct("SKU-001", "Test Product", decimal.Zero)
	require.NoError(t, err)

	t.Run("deactivates an active product", func(t *testing.T) {
		require.NoError(t, product.Deactivate())
		assert.False(t, product.IsActive())
	})

	t.Run("fails to deactivate twice", func(t *testing.T) {
		require.Error(t, product.Deactivate())
	})

	t.Run("activates an inactive product", func(t *testing.T) {
		require.NoError(t, product.Activate())
		assert.True(t, product.IsActive())
	})

	t.Run("fails to activate twice", func(t *testing.T) {
		require.Error(t, product.Activate())
	})
}

func TestProductUpdate(t *testing.T) {
	product, err := NewProduct("SKU-001", "Test Product", decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, product.Update("Renamed", "With a description"))
	assert.Equal(t, "Renamed", product.Name)
	assert.Equal(t, "With a description", product.Description)

	require.Error(t, product.Update("", ""))

	require.NoError(t, product.SetPrice(decimal.NewFromInt(10)))
	require.Error(t, product.SetPrice(decimal.NewFromInt(-10)))

	require.Error(t, product.SetImageURL(strings.Repeat("x", 501)))
	require.NoError(t, product.SetImageURL("https://cdn.example.com/p/sku-001.jpg"))
}
