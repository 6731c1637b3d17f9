package postgres

import (
	"context"
	"fmt"

	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implements StockMovementRepository over PostgreSQL
// (pool or tx). The table is append-only; there is no update or delete.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository builds the adapter. Pass pool or tx.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persists a movement. Quantities below 1 are rejected by the check
// constraint and surface as ErrInvalidQuantity.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, reason, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Type, movement.Quantity,
		movement.Reason, movement.CreatedAt, nullIfEmpty(movement.CreatedBy),
	)
	if err != nil {
		if pgErrCode(err) == codeCheckViolation {
			return domain.ErrInvalidQuantity
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct returns the latest movements for a product, newest first.
func (r *StockMovementRepo) ListByProduct(productID string, limit int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, movement_type, quantity, reason, created_at, created_by
		FROM stock_movements WHERE product_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Reason, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.CreatedBy = derefStr(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
