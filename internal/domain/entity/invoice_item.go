package entity

import "github.com/shopspring/decimal"

// InvoiceItem is one line of an invoice. Price is a snapshot of the product's
// price at invoice time and does not follow later price changes. A product
// cannot be deleted while invoice items reference it.
type InvoiceItem struct {
	ID        string
	InvoiceID string
	ProductID string
	Position  int // 1-based order the lines were supplied in
	Quantity  int // >= 1
	Price     decimal.Decimal // unit price at invoice time
}

// LineTotal is price * quantity.
func (i *InvoiceItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
