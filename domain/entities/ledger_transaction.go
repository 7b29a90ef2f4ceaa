package entities

import (
	"errors"
	"time"
)

// LedgerTransaction is an immutable audit record of one balance mutation
type LedgerTransaction struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	Type         TransactionType `db:"type"`
	Amount       int64           `db:"amount"`
	BalanceAfter int64           `db:"balance_after"`
	DrawID       *int64          `db:"draw_id"`
	TicketID     *int64          `db:"ticket_id"`
	Metadata     map[string]any  `db:"metadata"`
	CreatedAt    time.Time       `db:"created_at"`
}

// SignedAmount returns the amount with the direction of the balance change applied
func (t *LedgerTransaction) SignedAmount() int64 {
	if t.Type.IsCredit() {
		return t.Amount
	}
	return -t.Amount
}

// Validate performs basic validation before the transaction is appended
func (t *LedgerTransaction) Validate() error {
	if !t.Type.IsValid() {
		return errors.New("unknown transaction type")
	}
	if t.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if t.BalanceAfter < 0 {
		return errors.New("balance after cannot be negative")
	}
	return nil
}
