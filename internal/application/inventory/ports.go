package inventory

import (
	"context"

	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// TxRunner executes a function inside a database transaction, handing it
// repositories bound to that transaction. The movement write and the product
// quantity update are one atomic unit because both run through the same tx.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
