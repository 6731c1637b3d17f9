package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implements InvoiceRepository over PostgreSQL (pool or tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository builds the adapter. Pass pool or tx.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persists the invoice header. A number collision yields
// ErrDuplicateInvoiceNumber; generation treats it as a retryable race.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, number, created_at, created_by, pdf_path)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Number, invoice.CreatedAt,
		nullIfEmpty(invoice.CreatedBy), nullIfEmpty(invoice.PDFPath),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persists one line item.
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, product_id, position, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.InvoiceID, item.ProductID, item.Position, item.Quantity, item.Price,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// GetByID returns an invoice header, or nil when absent.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT id, number, created_at, created_by, pdf_path FROM invoices WHERE id = $1`
	var inv entity.Invoice
	var createdBy, pdfPath *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.Number, &inv.CreatedAt, &createdBy, &pdfPath,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.CreatedBy = derefStr(createdBy)
	inv.PDFPath = derefStr(pdfPath)
	return &inv, nil
}

// List returns invoice headers, newest first.
func (r *InvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT id, number, created_at, created_by, pdf_path
		FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		var createdBy, pdfPath *string
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CreatedAt, &createdBy, &pdfPath); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.CreatedBy = derefStr(createdBy)
		inv.PDFPath = derefStr(pdfPath)
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// Count returns the total number of invoices.
func (r *InvoiceRepo) Count() (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(), `SELECT COUNT(*) FROM invoices`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}

// ItemsByInvoice returns the line items of an invoice in insertion order.
func (r *InvoiceRepo) ItemsByInvoice(invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, position, quantity, price
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var item entity.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.Position, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// LastNumberWithPrefix returns the greatest invoice number starting with
// prefix, or "" when none exists. Numbers are zero-padded, so lexicographic
// and numeric order agree.
func (r *InvoiceRepo) LastNumberWithPrefix(prefix string) (string, error) {
	query := `SELECT number FROM invoices WHERE number LIKE $1 || '%' ORDER BY number DESC LIMIT 1`
	var number string
	err := r.q.QueryRow(context.Background(), query, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last invoice number: %w", err)
	}
	return number, nil
}

// UpdatePDFPath records the rendered artifact's storage path.
func (r *InvoiceRepo) UpdatePDFPath(id, path string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE invoices SET pdf_path = $2 WHERE id = $1`, id, nullIfEmpty(path))
	if err != nil {
		return fmt.Errorf("update invoice pdf path: %w", err)
	}
	return nil
}
