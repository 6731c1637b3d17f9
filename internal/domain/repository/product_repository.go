package repository

import (
	"github.com/shopspring/decimal"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
)

// ProductFilter narrows List queries. Zero value lists everything.
type ProductFilter struct {
	Query      string // substring match on name or sku
	CategoryID string
	InStock    bool // quantity > 0
	LowStock   bool // quantity <= min_quantity
	Limit      int
	Offset     int
}

// ProductRepository is the persistence port for products. GetForUpdate locks
// the row for the duration of the surrounding transaction and is the basis of
// every quantity mutation.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	GetForUpdate(id string) (*entity.Product, error)
	List(filter ProductFilter) ([]*entity.Product, error)
	Count(filter ProductFilter) (int, error)
	TotalValue(filter ProductFilter) (decimal.Decimal, error)
	Search(query string, limit int) ([]*entity.Product, error)
	Update(product *entity.Product) error
	UpdateQuantity(id string, quantity int) error
	Delete(id string) error
}
