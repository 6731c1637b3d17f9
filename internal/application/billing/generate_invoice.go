package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/skladpro/warehouse-api/internal/application/dto"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// writeOffReason is the movement reason recorded for each invoice line.
// The wording is a compatibility contract with existing movement history.
const writeOffReason = "Списание по накладной №%s"

// conflictBackoff waits between attempts of a contended generation transaction.
const conflictBackoff = 50 * time.Millisecond

// GenerateInvoiceUseCase turns a list of (product, quantity) pairs into a
// persisted invoice with matching items and out-movements, or fails with
// nothing persisted. Stock checks, number allocation and all writes run in one
// serializable transaction; conflicts are retried a bounded number of times.
// Document rendering happens after commit and never rolls stock effects back.
type GenerateInvoiceUseCase struct {
	txRunner    BillingTxRunner
	ledger      StockLedger
	invoiceRepo repository.InvoiceRepository // pool-bound, reads only
	productRepo repository.ProductRepository // pool-bound, reads only
	userRepo    repository.UserRepository
	renderer    DocumentRenderer
	artifacts   ArtifactStore
}

// NewGenerateInvoiceUseCase builds the use case.
func NewGenerateInvoiceUseCase(
	txRunner BillingTxRunner,
	ledger StockLedger,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	renderer DocumentRenderer,
	artifacts ArtifactStore,
) *GenerateInvoiceUseCase {
	return &GenerateInvoiceUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		renderer:    renderer,
		artifacts:   artifacts,
	}
}

// Generate creates the invoice. On success the returned response carries the
// persisted invoice; if only the rendering step failed, the response is still
// returned together with a RenderingFailedError (the invoice and its stock
// effects are committed and the PDF can be produced later via RenderPDF).
func (uc *GenerateInvoiceUseCase) Generate(ctx context.Context, actorID string, lines []dto.InvoiceLineRequest) (*dto.InvoiceResponse, error) {
	// Input validation: detected before any write, zero side effects.
	if len(lines) == 0 {
		return nil, domain.ErrEmptyInvoice
	}
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if line.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	var (
		inv      *entity.Invoice
		items    []*entity.InvoiceItem
		products map[string]*entity.Product
	)

	// Three attempts total: serialization failures and number-allocation races
	// abort the transaction cleanly, so the whole operation is safe to rerun.
	backoff := retry.WithMaxRetries(2, retry.NewConstant(conflictBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		inv, items, products = nil, nil, nil
		err := uc.runGeneration(ctx, actorID, lines, &inv, &items, &products)
		if errors.Is(err, domain.ErrConcurrencyConflict) || errors.Is(err, domain.ErrDuplicateInvoiceNumber) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateInvoiceNumber) {
			// Retries exhausted while racing for the daily sequence.
			err = fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return nil, err
	}

	resp := uc.toResponse(inv, items, products)

	// Rendering is intentionally outside the transaction boundary: best-effort,
	// holds no locks, and its failure leaves the committed invoice untouched.
	if renderErr := uc.renderAndStore(ctx, inv, resp); renderErr != nil {
		log.Warn().Err(renderErr).Str("invoice", inv.Number).Msg("invoice committed but rendering failed")
		return resp, renderErr
	}
	resp.PDFPath = inv.PDFPath
	return resp, nil
}

// runGeneration is one attempt of the atomic part: lock products, validate
// stock, allocate the number, persist the invoice, its items and the
// out-movements. All of it commits or none of it does.
func (uc *GenerateInvoiceUseCase) runGeneration(
	ctx context.Context,
	actorID string,
	lines []dto.InvoiceLineRequest,
	invOut **entity.Invoice,
	itemsOut *[]*entity.InvoiceItem,
	productsOut *map[string]*entity.Product,
) error {
	now := time.Now()
	return uc.txRunner.RunBilling(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		// Lock every referenced product once, in ascending-ID order so two
		// concurrent generations over the same products cannot deadlock.
		ids := make([]string, 0, len(lines))
		seen := make(map[string]bool, len(lines))
		for _, line := range lines {
			if !seen[line.ProductID] {
				seen[line.ProductID] = true
				ids = append(ids, line.ProductID)
			}
		}
		sort.Strings(ids)

		products := make(map[string]*entity.Product, len(ids))
		for _, id := range ids {
			product, err := productRepo.GetForUpdate(id)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrProductNotFound
			}
			products[id] = product
		}

		// Fail fast on the first line the current stock cannot cover. Lines
		// repeating a product are checked against the running balance the
		// ledger maintains below, so the aggregate cannot overdraw either.
		for _, line := range lines {
			product := products[line.ProductID]
			if product.Quantity < line.Quantity {
				return &domain.InsufficientStockError{ProductID: product.ID, Available: product.Quantity}
			}
		}

		// Next daily sequence: 1 + max existing, 0001 when none exist today.
		last, err := invoiceRepo.LastNumberWithPrefix(numberPrefix(now))
		if err != nil {
			return err
		}
		seq, err := sequenceOf(last)
		if err != nil {
			return err
		}
		inv := &entity.Invoice{
			ID:        uuid.New().String(),
			Number:    formatNumber(now, seq+1),
			CreatedAt: now,
			CreatedBy: actorID,
		}
		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}

		reason := fmt.Sprintf(writeOffReason, inv.Number)
		items := make([]*entity.InvoiceItem, 0, len(lines))
		for i, line := range lines {
			product := products[line.ProductID]
			item := &entity.InvoiceItem{
				ID:        uuid.New().String(),
				InvoiceID: inv.ID,
				ProductID: product.ID,
				Position:  i + 1,
				Quantity:  line.Quantity,
				Price:     product.Price, // snapshot at invoice time
			}
			if err := invoiceRepo.CreateItem(item); err != nil {
				return err
			}
			if _, err := uc.ledger.ApplyInTx(movRepo, productRepo, product,
				entity.MovementTypeOut, line.Quantity, reason, actorID, now); err != nil {
				return err
			}
			items = append(items, item)
		}

		*invOut = inv
		*itemsOut = items
		*productsOut = products
		return nil
	})
}

// renderAndStore produces the PDF artifact and records its path on the invoice.
func (uc *GenerateInvoiceUseCase) renderAndStore(ctx context.Context, inv *entity.Invoice, resp *dto.InvoiceResponse) error {
	doc := Document{
		Number:      inv.Number,
		CreatedAt:   inv.CreatedAt,
		CreatorName: uc.creatorName(inv.CreatedBy),
		GrandTotal:  resp.GrandTotal,
	}
	for _, item := range resp.Items {
		doc.Lines = append(doc.Lines, DocumentLine{
			SKU:       item.SKU,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.LineTotal,
		})
	}

	data, err := uc.renderer.Render(ctx, doc)
	if err != nil {
		return &domain.RenderingFailedError{InvoiceID: inv.ID, Err: err}
	}
	filename := fmt.Sprintf("invoice_%s_%s.pdf", inv.Number, time.Now().Format("20060102_150405"))
	path, err := uc.artifacts.Save(filename, data)
	if err != nil {
		return &domain.RenderingFailedError{InvoiceID: inv.ID, Err: err}
	}
	if err := uc.invoiceRepo.UpdatePDFPath(inv.ID, path); err != nil {
		return &domain.RenderingFailedError{InvoiceID: inv.ID, Err: err}
	}
	inv.PDFPath = path
	return nil
}

func (uc *GenerateInvoiceUseCase) creatorName(userID string) string {
	if userID == "" {
		return "—"
	}
	user, err := uc.userRepo.GetByID(userID)
	if err != nil || user == nil {
		return "—"
	}
	return user.DisplayName()
}

func (uc *GenerateInvoiceUseCase) toResponse(inv *entity.Invoice, items []*entity.InvoiceItem, products map[string]*entity.Product) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		CreatedAt:  inv.CreatedAt,
		CreatedBy:  inv.CreatedBy,
		PDFPath:    inv.PDFPath,
		GrandTotal: decimal.Zero,
		Items:      make([]dto.InvoiceItemResponse, 0, len(items)),
	}
	for _, item := range items {
		name, sku := "", ""
		if p, ok := products[item.ProductID]; ok {
			name, sku = p.Name, p.SKU
		}
		lineTotal := item.LineTotal()
		resp.GrandTotal = resp.GrandTotal.Add(lineTotal)
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: name,
			SKU:         sku,
			Quantity:    item.Quantity,
			Price:       item.Price,
			LineTotal:   lineTotal,
		})
	}
	return resp
}
