package entity

import "time"

// Category groups products. Deleting a category detaches its products
// (their category reference is nulled, the products stay).
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
