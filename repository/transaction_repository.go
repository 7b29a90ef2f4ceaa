package repository

import (
	"context"
	"fmt"

	"lotto/database"
	"lotto/domain/entities"
)

// TransactionRepository implements the append-only ledger
type TransactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

func newTransactionRepositoryWithTx(tx Queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record appends a ledger transaction and fills in its ID and timestamp
func (r *TransactionRepository) Record(ctx context.Context, tx *entities.LedgerTransaction) error {
	metadata := tx.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	query := `
		INSERT INTO transactions (user_id, type, amount, balance_after, draw_id, ticket_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		tx.UserID,
		tx.Type,
		tx.Amount,
		tx.BalanceAfter,
		tx.DrawID,
		tx.TicketID,
		metadata,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s transaction for user %d: %w", tx.Type, tx.UserID, err)
	}
	return nil
}

// GetByUser returns a user's most recent ledger transactions
func (r *TransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerTransaction, error) {
	query := `
		SELECT id, user_id, type, amount, balance_after, draw_id, ticket_id, metadata, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []*entities.LedgerTransaction
	for rows.Next() {
		var tx entities.LedgerTransaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Type,
			&tx.Amount,
			&tx.BalanceAfter,
			&tx.DrawID,
			&tx.TicketID,
			&tx.Metadata,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
