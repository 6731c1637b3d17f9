package billing

import (
	"context"

	"github.com/skladpro/warehouse-api/internal/application/dto"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
)

// GetInvoice loads an invoice with its items, enriched with product name and
// sku. Items hold a protective reference, so the products are guaranteed to
// still exist.
func (uc *GenerateInvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.ItemsByInvoice(id)
	if err != nil {
		return nil, err
	}
	products := make(map[string]*entity.Product, len(items))
	for _, item := range items {
		if _, ok := products[item.ProductID]; ok {
			continue
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product != nil {
			products[item.ProductID] = product
		}
	}
	return uc.toResponse(inv, items, products), nil
}

// ListInvoices returns invoice headers, newest first. Items are not expanded.
func (uc *GenerateInvoiceUseCase) ListInvoices(ctx context.Context, limit, offset int) (*dto.InvoiceListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	invoices, err := uc.invoiceRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.invoiceRepo.Count()
	if err != nil {
		return nil, err
	}
	resp := &dto.InvoiceListResponse{
		Total:    total,
		Invoices: make([]dto.InvoiceResponse, 0, len(invoices)),
	}
	for _, inv := range invoices {
		resp.Invoices = append(resp.Invoices, dto.InvoiceResponse{
			ID:        inv.ID,
			Number:    inv.Number,
			CreatedAt: inv.CreatedAt,
			CreatedBy: inv.CreatedBy,
			PDFPath:   inv.PDFPath,
		})
	}
	return resp, nil
}
