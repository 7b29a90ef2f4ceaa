package entities

import (
	"time"
)

// User is an account holding a spendable balance. The caller's identity is opaque.
type User struct {
	ID         int64     `db:"id"`
	ExternalID int64     `db:"external_id"`
	Username   string    `db:"username"`
	Balance    int64     `db:"balance"`
	TotalWon   int64     `db:"total_won"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// CanAfford checks if the user has sufficient balance for an amount
func (u *User) CanAfford(amount int64) bool {
	return u.Balance >= amount
}
