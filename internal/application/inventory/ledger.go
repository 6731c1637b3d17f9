package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// Ledger is the single path by which Product.Quantity changes due to a recorded
// event. Every apply locks the product row (SELECT FOR UPDATE), persists an
// immutable StockMovement and updates the quantity in the same transaction.
// Upstream validation is advisory; the ledger is the enforcement boundary for
// the quantity >= 0 invariant.
type Ledger struct {
	txRunner TxRunner
	movRepo  repository.StockMovementRepository // pool-bound, reads only
}

// NewLedger builds the ledger over a transaction runner. movRepo is a
// pool-bound repository used for history reads outside any transaction.
func NewLedger(txRunner TxRunner, movRepo repository.StockMovementRepository) *Ledger {
	return &Ledger{txRunner: txRunner, movRepo: movRepo}
}

// MovementInput is a request to record one stock change.
type MovementInput struct {
	ProductID string
	Type      string // in, out
	Quantity  int
	Reason    string
	ActorID   string // empty for anonymous/administrative changes
}

// ApplyMovement records a movement and mutates the product quantity
// atomically: +quantity for in, -quantity for out.
func (l *Ledger) ApplyMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if !entity.ValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}

	var mov *entity.StockMovement
	err := l.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		mov, err = l.ApplyInTx(movRepo, productRepo, product, in.Type, in.Quantity, in.Reason, in.ActorID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyInTx records a movement using the caller's tx-bound repositories against
// a product row the caller has already locked. The product's in-memory quantity
// is updated too, so repeated applies against the same product within one
// transaction see the running balance. Used by invoice generation, which wraps
// several applies plus the invoice writes in a single transaction.
func (l *Ledger) ApplyInTx(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	movementType string,
	quantity int,
	reason, actorID string,
	now time.Time,
) (*entity.StockMovement, error) {
	if !entity.ValidMovementType(movementType) {
		return nil, domain.ErrInvalidInput
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	newQty := product.Quantity
	switch movementType {
	case entity.MovementTypeOut:
		if product.Quantity < quantity {
			return nil, &domain.InsufficientStockError{ProductID: product.ID, Available: product.Quantity}
		}
		newQty -= quantity
	case entity.MovementTypeIn:
		newQty += quantity
	}

	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Type:      movementType,
		Quantity:  quantity,
		Reason:    reason,
		CreatedAt: now,
		CreatedBy: actorID,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	if err := productRepo.UpdateQuantity(product.ID, newQty); err != nil {
		return nil, err
	}
	product.Quantity = newQty
	return mov, nil
}

// History returns the most recent movements for a product, newest first.
func (l *Ledger) History(ctx context.Context, productID string, limit int) ([]*entity.StockMovement, error) {
	if limit <= 0 {
		limit = 10
	}
	return l.movRepo.ListByProduct(productID, limit)
}
