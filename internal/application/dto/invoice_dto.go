package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one requested (product, quantity) pair.
type InvoiceLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// GenerateInvoiceRequest asks for an invoice over the given line items.
type GenerateInvoiceRequest struct {
	Items []InvoiceLineRequest `json:"items"`
}

// InvoiceItemResponse is one line of a persisted invoice. Price is the
// snapshot taken at generation time.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse is the API view of an invoice with its items.
type InvoiceResponse struct {
	ID         string                `json:"id"`
	Number     string                `json:"number"`
	CreatedAt  time.Time             `json:"created_at"`
	CreatedBy  string                `json:"created_by,omitempty"`
	PDFPath    string                `json:"pdf_path,omitempty"`
	GrandTotal decimal.Decimal       `json:"grand_total"`
	Items      []InvoiceItemResponse `json:"items"`
}

// InvoiceListResponse is a page of invoice headers.
type InvoiceListResponse struct {
	Total    int               `json:"total"`
	Invoices []InvoiceResponse `json:"invoices"`
}
