package dto

import "time"

// RegisterMovementRequest records one stock change: product_id, type (in|out),
// quantity >= 1 and a free-text reason.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// MovementResponse is the API view of a recorded movement.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}
