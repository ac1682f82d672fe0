package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("creates category with valid inputs", func(t *testing.T) {
		category, err := NewCategory("outerwear", "Outerwear")
		require.NoError(t, err)
		require.NotNil(t, category)

		assert.Equal(t, "OUTERWEAR", category.Code)
		assert.Equal(t, "Outerwear", category.Name)
		assert.Equal(t, CategoryStatusActive, category.Status)
		assert.True(t, category.IsActive())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewCategory("", "Outerwear")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code cannot be empty")
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		_, err := NewCategory("outer wear", "Outerwear")
		require.Error(t, err)
	})

	t.Run("fails with name too long", func(t *testing.T) {
		_, err := NewCategory("OUTERWEAR", strings.Repeat("a", 101))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 100 characters")
	})
}

func TestCategoryLifecycle(t *testing.T) {
	category, err := NewCategory("OUTERWEAR", "Outerwear")
	require.NoError(t, err)

	require.NoError(t, category.Update("Coats and Jackets", "Cold weather wear"))
	assert.Equal(t, "Coats and Jackets", category.Name)

	require.Error(t, category.Update("", ""))

	require.NoError(t, category.Deactivate())
	assert.False(t, category.IsActive())
	require.Error(t, category.Deactivate())

	require.NoError(t, category.Activate())
	assert.True(t, category.IsActive())
	require.Error(t, category.Activate())
}

func TestNewSubcategory(t *testing.T) {
	parent, err := NewCategory("OUTERWEAR", "Outerwear")
	require.NoError(t, err)

	t.Run("creates subcategory under a parent", func(t *testing.T) {
		subcategory, err := NewSubcategory(parent, "jackets", "Jackets")
		require.NoError(t, err)

		assert.Equal(t, parent.ID, subcategory.CategoryID)
		assert.Equal(t, "JACKETS", subcategory.Code)
		assert.True(t, subcategory.IsActive())
	})

	t.Run("fails without a parent", func(t *testing.T) {
		_, err := NewSubcategory(nil, "JACKETS", "Jackets")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Parent category is required")
	})

	t.Run("fails with invalid code", func(t *testing.T) {
		_, err := NewSubcategory(parent, "", "Jackets")
		require.Error(t, err)
	})
}

func TestSubcategoryLifecycle(t *testing.T) {
	parent, err := NewCategory("OUTERWEAR", "Outerwear")
	require.NoError(t, err)

	subcategory, err := NewSubcategory(parent, "JACKETS", "Jackets")
	require.NoError(t, err)

	require.NoError(t, subcategory.Update("Winter Jackets", "Insulated"))
	assert.Equal(t, "Winter Jackets", subcategory.Name)

	require.NoError(t, subcategory.Deactivate())
	assert.False(t, subcategory.IsActive())
	require.NoError(t, subcategory.Activate())
	assert.True(t, subcategory.IsActive())
}
