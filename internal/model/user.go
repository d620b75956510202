package model

import "time"

// User owns plants, assignments, and ledger rows. PasswordHash never leaves
// the store layer.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
