package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lotto/database"
	"lotto/domain/entities"

	"github.com/stretchr/testify/require"
)

// InsertUser creates a user row directly with the given balance
func InsertUser(t *testing.T, db *database.DB, externalID int64, balance int64) *entities.User {
	t.Helper()

	var user entities.User
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (external_id, username, balance)
		VALUES ($1, $2, $3)
		RETURNING id, external_id, username, balance, total_won, created_at, updated_at
	`, externalID, fmt.Sprintf("player-%d", externalID), balance).Scan(
		&user.ID, &user.ExternalID, &user.Username, &user.Balance, &user.TotalWon, &user.CreatedAt, &user.UpdatedAt,
	)
	require.NoError(t, err)
	return &user
}

// InsertDraw creates a draw row directly
func InsertDraw(t *testing.T, db *database.DB, drawNumber string, drawTime time.Time, status entities.DrawStatus) *entities.Draw {
	t.Helper()

	draw := &entities.Draw{DrawNumber: drawNumber, DrawTime: drawTime, Status: status}
	var winning []int
	var completedAt *time.Time
	if status == entities.DrawStatusCompleted {
		winning = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
		now := time.Now().UTC()
		completedAt = &now
	}

	err := db.QueryRow(context.Background(), `
		INSERT INTO draws (draw_number, draw_time, status, winning_numbers, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, drawNumber, drawTime, status, winning, completedAt).Scan(&draw.ID, &draw.CreatedAt)
	require.NoError(t, err)

	draw.WinningNumbers = winning
	draw.CompletedAt = completedAt
	return draw
}

// NewTicket builds an unsaved active ticket
func NewTicket(userID, drawID int64, ticketNumber string, numbers []int) *entities.Ticket {
	return &entities.Ticket{
		UserID:       userID,
		DrawID:       drawID,
		TicketNumber: ticketNumber,
		Numbers:      numbers,
		Status:       entities.TicketStatusActive,
		Price:        50,
	}
}

// UserBalance reads the committed balance of a user
func UserBalance(t *testing.T, db *database.DB, userID int64) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(context.Background(), `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// CountTransactions counts ledger rows of a type for a user
func CountTransactions(t *testing.T, db *database.DB, userID int64, txType entities.TransactionType) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND type = $2`, userID, txType).Scan(&count)
	require.NoError(t, err)
	return count
}

// CountDraws counts draws in a status
func CountDraws(t *testing.T, db *database.DB, status entities.DrawStatus) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(), `SELECT COUNT(*) FROM draws WHERE status = $1`, status).Scan(&count)
	require.NoError(t, err)
	return count
}
