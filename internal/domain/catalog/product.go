package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a sellable item in the storefront catalog.
// It is the aggregate root for product-related operations.
//
// DiscountPercentage is derived state: it is owned by the discount
// application engine and must never be edited by hand. At any moment it
// equals the value produced by replaying the active rule set in creation
// order.
type Product struct {
	shared.AuditedAggregateRoot
	Code               string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name               string          `gorm:"type:varchar(200);not null"`
	Description        string          `gorm:"type:text"`
	Price              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Categories         pq.StringArray  `gorm:"type:text[]"` // category IDs the product belongs to
	Subcategories      pq.StringArray  `gorm:"type:text[]"` // subcategory IDs the product belongs to
	DiscountPercentage int             `gorm:"not null;default:0"`
	Status             ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	SortOrder          int             `gorm:"not null;default:0"`
	ImageURL           string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name string, price decimal.Decimal) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	product := &Product{
		AuditedAggregateRoot: shared.AuditedAggregateRoot{BaseAggregateRoot: shared.NewBaseAggregateRoot()},
		Code:                 strings.ToUpper(code),
		Name:                 name,
		Price:                price,
		Categories:           pq.StringArray{},
		Subcategories:        pq.StringArray{},
		Status:               ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPrice updates the selling price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetImageURL sets the product image URL
func (p *Product) SetImageURL(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_IMAGE_URL", "Image URL cannot exceed 500 characters")
	}

	p.ImageURL = url
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetSortOrder sets the display order of the product
func (p *Product) SetSortOrder(order int) {
	p.SortOrder = order
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// AssignCategory adds the product to a category
func (p *Product) AssignCategory(categoryID uuid.UUID) {
	if p.InCategory(categoryID) {
		return
	}
	p.Categories = append(p.Categories, categoryID.String())
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// RemoveCategory removes the product from a category
func (p *Product) RemoveCategory(categoryID uuid.UUID) {
	idx := slices.Index(p.Categories, categoryID.String())
	if idx < 0 {
		return
	}
	p.Categories = slices.Delete(p.Categories, idx, idx+1)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// AssignSubcategory adds the product to a subcategory
func (p *Product) AssignSubcategory(subcategoryID uuid.UUID) {
	if p.InSubcategory(subcategoryID) {
		return
	}
	p.Subcategories = append(p.Subcategories, subcategoryID.String())
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// RemoveSubcategory removes the product from a subcategory
func (p *Product) RemoveSubcategory(subcategoryID uuid.UUID) {
	idx := slices.Index(p.Subcategories, subcategoryID.String())
	if idx < 0 {
		return
	}
	p.Subcategories = slices.Delete(p.Subcategories, idx, idx+1)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// SetDiscountPercentage writes the effective discount onto the product.
// Only the discount application engine calls this; the value is derived
// from the active rule set.
func (p *Product) SetDiscountPercentage(percentage int) error {
	if percentage < 0 || percentage > 100 {
		return shared.NewDomainError("INVALID_PERCENTAGE", "Discount percentage must be between 0 and 100")
	}

	old := p.DiscountPercentage
	p.DiscountPercentage = percentage
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if old != percentage {
		p.AddDomainEvent(NewProductDiscountChangedEvent(p, old, percentage))
	}

	return nil
}

// Activate activates the product
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}

	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, ProductStatusInactive, ProductStatusActive))

	return nil
}

// Deactivate deactivates the product
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}

	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, ProductStatusActive, ProductStatusInactive))

	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// InCategory returns true if the product belongs to the given category
func (p *Product) InCategory(categoryID uuid.UUID) bool {
	return slices.Contains(p.Categories, categoryID.String())
}

// InSubcategory returns true if the product belongs to the given subcategory
func (p *Product) InSubcategory(subcategoryID uuid.UUID) bool {
	return slices.Contains(p.Subcategories, subcategoryID.String())
}

// IsDiscounted returns true if a nonzero discount currently applies
func (p *Product) IsDiscounted() bool {
	return p.DiscountPercentage > 0
}

// DiscountedPrice returns the effective selling price after the discount
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.DiscountPercentage == 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(int64(100 - p.DiscountPercentage)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor)
}

// validateProductCode validates the product code (SKU)
func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
