package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest creates a catalog item. SKU is immutable afterwards.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	CategoryID  string          `json:"category_id"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity"`
	Location    string          `json:"location"`
}

// UpdateProductRequest updates catalog fields. SKU and Quantity are excluded:
// the sku is the immutable business key and quantity only changes through
// stock movements.
type UpdateProductRequest struct {
	Name        string          `json:"name"`
	CategoryID  string          `json:"category_id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	MinQuantity int             `json:"min_quantity"`
	Location    string          `json:"location"`
}

// ProductResponse is the API view of a product.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CategoryID  string          `json:"category_id,omitempty"`
	SKU         string          `json:"sku"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity"`
	Location    string          `json:"location,omitempty"`
	IsLowStock  bool            `json:"is_low_stock"`
	TotalValue  decimal.Decimal `json:"total_value"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// ProductDetailResponse is a product together with its recent movements.
type ProductDetailResponse struct {
	ProductResponse
	Movements []MovementResponse `json:"movements"`
}

// ProductListResponse is a filtered product page plus aggregate figures.
type ProductListResponse struct {
	Total      int               `json:"total"`
	TotalValue decimal.Decimal   `json:"total_value"`
	Products   []ProductResponse `json:"products"`
}

// ProductSearchResult is the lightweight picker payload for invoice building.
type ProductSearchResult struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category"`
}

// ProductStockResponse is the current-stock payload for a single product.
type ProductStockResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}
