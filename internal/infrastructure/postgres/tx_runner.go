package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skladpro/warehouse-api/internal/application/billing"
	"github.com/skladpro/warehouse-api/internal/application/inventory"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and billing.BillingTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside a PostgreSQL transaction with
// tx-bound repositories. Aborts caused by contention surface as
// domain.ErrConcurrencyConflict so callers can apply their retry policy.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner over the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run executes fn inside a transaction with movement and product repositories.
// Used by the ledger: the movement insert and the quantity update commit or
// roll back together.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(NewStockMovementRepository(tx), NewProductRepository(tx))
	})
}

// RunBilling executes fn inside a serializable transaction spanning inventory
// and invoice repositories. Invoice generation needs the stricter isolation so
// two concurrent generators cannot both pass the stock check or allocate the
// same daily sequence.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	return r.inTx(ctx, opts, func(tx pgx.Tx) error {
		return fn(NewStockMovementRepository(tx), NewProductRepository(tx), NewInvoiceRepository(tx))
	})
}

func (r *TxRunner) inTx(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isConcurrencyConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isConcurrencyConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
