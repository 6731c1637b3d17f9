package repository

import "github.com/skladpro/warehouse-api/internal/domain/entity"

// InvoiceRepository persists invoice headers and line items.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	GetByID(id string) (*entity.Invoice, error)
	List(limit, offset int) ([]*entity.Invoice, error)
	Count() (int, error)
	ItemsByInvoice(invoiceID string) ([]*entity.InvoiceItem, error)
	// LastNumberWithPrefix returns the lexicographically greatest invoice number
	// starting with prefix, or "" when none exists. Called inside the generation
	// transaction to allocate the next daily sequence.
	LastNumberWithPrefix(prefix string) (string, error)
	UpdatePDFPath(id, path string) error
}
