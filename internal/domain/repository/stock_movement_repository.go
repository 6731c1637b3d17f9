package repository

import "github.com/skladpro/warehouse-api/internal/domain/entity"

// StockMovementRepository persists the append-only movement history.
// There is deliberately no update or delete: corrections are new movements.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByProduct(productID string, limit int) ([]*entity.StockMovement, error)
}
