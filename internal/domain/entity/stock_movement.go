package entity

import "time"

// Stock movement types.
const (
	MovementTypeIn  = "in"  // receipt
	MovementTypeOut = "out" // issue
)

// ValidMovementType reports whether t is one of the two movement types.
func ValidMovementType(t string) bool {
	return t == MovementTypeIn || t == MovementTypeOut
}

// StockMovement is a single recorded stock change event. The history is
// append-only: movements are never edited or deleted to undo a mutation.
// Quantity is always strictly positive; the type carries the direction.
type StockMovement struct {
	ID        string
	ProductID string
	Type      string // in, out
	Quantity  int    // >= 1
	Reason    string // free-text audit trail
	CreatedAt time.Time
	CreatedBy string // UserID, empty if the actor was deleted
}
