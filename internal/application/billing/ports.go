package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// BillingTxRunner executes a function inside a single serializable transaction
// spanning inventory and invoice repositories. Invoice generation must commit
// the stock checks, the number allocation and all writes together, or nothing.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// StockLedger is the integration point with the inventory ledger: ApplyInTx
// issues stock using the caller's tx-bound repositories against an
// already-locked product. On error (e.g. insufficient stock) the caller rolls
// back the whole transaction.
type StockLedger interface {
	ApplyInTx(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		product *entity.Product,
		movementType string,
		quantity int,
		reason, actorID string,
		now time.Time,
	) (*entity.StockMovement, error)
}

// DocumentLine is one row of the rendered invoice table.
type DocumentLine struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Document is everything the renderer needs to produce the invoice PDF.
type Document struct {
	Number      string
	CreatedAt   time.Time
	CreatorName string
	Lines       []DocumentLine
	GrandTotal  decimal.Decimal
}

// DocumentRenderer turns a finalized invoice into a binary artifact.
// Rendering runs outside the generation transaction and may fail independently
// of the committed stock effects.
type DocumentRenderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// ArtifactStore persists rendered artifacts and returns the storage path kept
// on the invoice. Open reads a previously saved artifact back by that path.
type ArtifactStore interface {
	Save(filename string, data []byte) (string, error)
	Open(path string) ([]byte, error)
}
