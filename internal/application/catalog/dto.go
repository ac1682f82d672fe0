package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code           string          `json:"code" binding:"required,min=1,max=50"`
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Description    string          `json:"description" binding:"max=2000"`
	Price          decimal.Decimal `json:"price"`
	ImageURL       string          `json:"image_url" binding:"max=500"`
	SortOrder      *int            `json:"sort_order"`
	CategoryIDs    []uuid.UUID     `json:"category_ids"`
	SubcategoryIDs []uuid.UUID     `json:"subcategory_ids"`
	Actor          *uuid.UUID      `json:"-"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=500"`
	SortOrder   *int             `json:"sort_order"`
}

// ProductListFilter narrows a product listing
type ProductListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive"`
	Discounted bool   `form:"discounted"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage int             `json:"discount_percentage"`
	DiscountedPrice    decimal.Decimal `json:"discounted_price"`
	Categories         []string        `json:"categories"`
	Subcategories      []string        `json:"subcategories"`
	Status             string          `json:"status"`
	SortOrder          int             `json:"sort_order"`
	ImageURL           string          `json:"image_url"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		Code:               p.Code,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		DiscountedPrice:    p.DiscountedPrice(),
		Categories:         p.Categories,
		Subcategories:      p.Subcategories,
		Status:             string(p.Status),
		SortOrder:          p.SortOrder,
		ImageURL:           p.ImageURL,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		Version:            p.GetVersion(),
	}
}

// ToProductResponses converts a product slice to response DTOs
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
	SortOrder   *int   `json:"sort_order"`
}

// CreateSubcategoryRequest represents a request to create a subcategory
type CreateSubcategoryRequest struct {
	CategoryID  uuid.UUID `json:"-"`
	Code        string    `json:"code" binding:"required,min=1,max=50"`
	Name        string    `json:"name" binding:"required,min=1,max=100"`
	Description string    `json:"description" binding:"max=2000"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	SortOrder   *int    `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain category to a response DTO
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCategoryResponses converts a category slice to response DTOs
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// SubcategoryResponse represents a subcategory in API responses
type SubcategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSubcategoryResponse converts a domain subcategory to a response DTO
func ToSubcategoryResponse(s *catalog.Subcategory) SubcategoryResponse {
	return SubcategoryResponse{
		ID:          s.ID,
		CategoryID:  s.CategoryID,
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		SortOrder:   s.SortOrder,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToSubcategoryResponses converts a subcategory slice to response DTOs
func ToSubcategoryResponses(subcategories []catalog.Subcategory) []SubcategoryResponse {
	responses := make([]SubcategoryResponse, len(subcategories))
	for i := range subcategories {
		responses[i] = ToSubcategoryResponse(&subcategories[i])
	}
	return responses
}
