package entity

import "time"

// User roles.
const (
	RoleAdmin = "admin" // manages the product catalog
	RoleUser  = "user"  // views inventory, records movements, generates invoices
)

// User is an authenticated actor. The core never authenticates; it only records
// the identity handed to it on products, movements and invoices.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, never plain after persisting
	FullName     string
	Role         string // admin, user
	CreatedAt    time.Time
}

// DisplayName is the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
