package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound               = errors.New("resource not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrUsernameTaken          = errors.New("username is already registered")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidQuantity        = errors.New("quantity is below the required minimum")
	ErrDuplicateSKU           = errors.New("product with this sku already exists")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
	ErrEmptyInvoice           = errors.New("invoice has no line items")
	ErrReferencedByInvoice    = errors.New("product is referenced by invoice items")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrConcurrencyConflict    = errors.New("transaction aborted due to contention")
	ErrRenderingFailed        = errors.New("invoice document rendering failed")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("access denied")
)

// InsufficientStockError reports how much stock actually remains so the caller
// can adjust the request and resubmit. Matches ErrInsufficientStock via errors.Is.
type InsufficientStockError struct {
	ProductID string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d", e.ProductID, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// RenderingFailedError signals that the invoice itself is committed but its PDF
// could not be produced. The invoice can be re-rendered later.
type RenderingFailedError struct {
	InvoiceID string
	Err       error
}

func (e *RenderingFailedError) Error() string {
	return fmt.Sprintf("render invoice %s: %v", e.InvoiceID, e.Err)
}

func (e *RenderingFailedError) Unwrap() error { return ErrRenderingFailed }
