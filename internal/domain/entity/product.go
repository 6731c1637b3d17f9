package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a warehouse catalog item. SKU is the unique business key and never
// changes after creation. Quantity is mutated only through stock movements
// (see the inventory ledger); it never goes below zero.
type Product struct {
	ID          string
	Name        string
	CategoryID  string // empty if uncategorized
	SKU         string
	Description string
	Price       decimal.Decimal // fixed-point, 2 decimal places
	Quantity    int
	MinQuantity int // low-stock threshold
	Location    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string // UserID, empty if the creator was deleted
}

// IsLowStock reports whether the quantity has fallen to or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinQuantity
}

// TotalValue is price * quantity for the current stock.
func (p *Product) TotalValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
