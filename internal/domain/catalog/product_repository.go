package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines the persistence operations for products.
//
// The bulk discount operations are the write surface of the discount
// application engine: each call is a single set-based statement so that a
// rule application either lands for every matched row or for none.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindDiscounted(ctx context.Context, limit int) ([]Product, error)

	// FindActiveIDs returns the IDs of all active products.
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	// FindActiveIDsByCategory returns the IDs of active products whose
	// category set contains the given category.
	FindActiveIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)
	// FindActiveIDsBySubcategory returns the IDs of active products whose
	// subcategory set contains the given subcategory.
	FindActiveIDsBySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]uuid.UUID, error)

	// BulkUpdateDiscount writes the percentage onto every product in ids as
	// one set-based update and returns the number of rows written.
	BulkUpdateDiscount(ctx context.Context, ids []uuid.UUID, percentage int) (int64, error)
	// ResetActiveDiscounts zeroes the discount on every active product and
	// returns the number of rows written.
	ResetActiveDiscounts(ctx context.Context) (int64, error)

	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// CategoryRepository defines the persistence operations for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// SubcategoryRepository defines the persistence operations for subcategories
type SubcategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subcategory, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Subcategory, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Subcategory, error)
	Save(ctx context.Context, subcategory *Subcategory) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
