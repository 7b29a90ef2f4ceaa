package entities

// TransactionType represents the type of balance change
type TransactionType string

// All transaction types supported by the ledger
const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeTicketPurchase TransactionType = "ticket_purchase"
	TransactionTypeWin            TransactionType = "win"
)

// IsCredit returns true if the transaction type adds to the balance
func (tt TransactionType) IsCredit() bool {
	return tt == TransactionTypeDeposit || tt == TransactionTypeWin
}

// IsValid returns true for known transaction types
func (tt TransactionType) IsValid() bool {
	switch tt {
	case TransactionTypeDeposit, TransactionTypeTicketPurchase, TransactionTypeWin:
		return true
	}
	return false
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
