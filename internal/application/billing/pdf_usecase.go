package billing

import (
	"context"
	"fmt"

	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// PDFUseCase serves and re-renders invoice documents for invoices that are
// already committed. Rendering here is the recovery path for generation calls
// that ended in RenderingFailed, and the backing operation of the download
// endpoint.
type PDFUseCase struct {
	generator   *GenerateInvoiceUseCase
	invoiceRepo repository.InvoiceRepository
	artifacts   ArtifactStore
}

// NewPDFUseCase builds the use case.
func NewPDFUseCase(generator *GenerateInvoiceUseCase, invoiceRepo repository.InvoiceRepository, artifacts ArtifactStore) *PDFUseCase {
	return &PDFUseCase{generator: generator, invoiceRepo: invoiceRepo, artifacts: artifacts}
}

// Render produces the PDF for an existing invoice and stores its path.
// The invoice's stock effects are long committed; this touches nothing else.
func (uc *PDFUseCase) Render(ctx context.Context, invoiceID string) (string, error) {
	resp, err := uc.generator.GetInvoice(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return "", err
	}
	if inv == nil {
		return "", domain.ErrNotFound
	}
	if err := uc.generator.renderAndStore(ctx, inv, resp); err != nil {
		return "", err
	}
	return inv.PDFPath, nil
}

// Download returns the stored artifact bytes and a download filename.
// Returns ErrNotFound when the invoice has no rendered document yet.
func (uc *PDFUseCase) Download(ctx context.Context, invoiceID string) ([]byte, string, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if inv.PDFPath == "" {
		return nil, "", fmt.Errorf("%w: invoice %s has no rendered document", domain.ErrNotFound, inv.Number)
	}
	data, err := uc.artifacts.Open(inv.PDFPath)
	if err != nil {
		return nil, "", fmt.Errorf("open artifact: %w", err)
	}
	return data, fmt.Sprintf("invoice_%s.pdf", inv.Number), nil
}
