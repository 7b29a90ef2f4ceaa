package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lotto/database"
	"lotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, user_id, draw_id, ticket_number, numbers, status, price, win_amount,
	matched_count, matched_numbers, purchased_at, settled_at, claimed_at`

// TicketRepository implements ticket data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

func newTicketRepositoryWithTx(tx Queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var ticket entities.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.DrawID,
		&ticket.TicketNumber,
		&ticket.Numbers,
		&ticket.Status,
		&ticket.Price,
		&ticket.WinAmount,
		&ticket.MatchedCount,
		&ticket.MatchedNumbers,
		&ticket.PurchasedAt,
		&ticket.SettledAt,
		&ticket.ClaimedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) queryMany(ctx context.Context, query string, args ...any) ([]*entities.Ticket, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*entities.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return tickets, nil
}

// Create inserts a ticket and fills in its ID and purchase time
func (r *TicketRepository) Create(ctx context.Context, ticket *entities.Ticket) error {
	query := `
		INSERT INTO tickets (user_id, draw_id, ticket_number, numbers, status, price, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::timestamptz, NOW()))
		RETURNING id, purchased_at
	`

	var purchasedAt *time.Time
	if !ticket.PurchasedAt.IsZero() {
		purchasedAt = &ticket.PurchasedAt
	}

	err := r.q.QueryRow(ctx, query,
		ticket.UserID,
		ticket.DrawID,
		ticket.TicketNumber,
		ticket.Numbers,
		ticket.Status,
		ticket.Price,
		purchasedAt,
	).Scan(&ticket.ID, &ticket.PurchasedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*entities.Ticket, error) {
	ticket, err := scanTicket(r.q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}
	return ticket, nil
}

// GetActiveByDrawForUpdate locks and returns every unsettled ticket of a draw
func (r *TicketRepository) GetActiveByDrawForUpdate(ctx context.Context, drawID int64) ([]*entities.Ticket, error) {
	return r.queryMany(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE draw_id = $1
		  AND status = 'active'
		ORDER BY id ASC
		FOR UPDATE
	`, drawID)
}

// UpdateSettlement writes the scoring outcome of an unsettled ticket
func (r *TicketRepository) UpdateSettlement(ctx context.Context, ticket *entities.Ticket) error {
	result, err := r.q.Exec(ctx, `
		UPDATE tickets
		SET status = $2,
		    win_amount = $3,
		    matched_count = $4,
		    matched_numbers = $5,
		    settled_at = $6
		WHERE id = $1
		  AND status IN ('active', 'drawing')
	`, ticket.ID, ticket.Status, ticket.WinAmount, ticket.MatchedCount, nonNilInts(ticket.MatchedNumbers), ticket.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to update ticket %d: %w", ticket.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d not found or already settled", ticket.ID)
	}
	return nil
}

// ListByUser returns a user's tickets, newest first
func (r *TicketRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entities.Ticket, error) {
	return r.queryMany(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE user_id = $1
		ORDER BY purchased_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
}

// CountByUserAndStatus returns how many tickets a user holds in each status
func (r *TicketRepository) CountByUserAndStatus(ctx context.Context, userID int64) (map[entities.TicketStatus]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT status, COUNT(*)
		FROM tickets
		WHERE user_id = $1
		GROUP BY status
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets for user %d: %w", userID, err)
	}
	defer rows.Close()

	counts := make(map[entities.TicketStatus]int64)
	for rows.Next() {
		var status entities.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ticket count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket counts: %w", err)
	}
	return counts, nil
}

// MarkClaimed moves a won ticket owned by userID to claimed. Returns false when
// the ticket is not in the won state, which makes a repeated claim a no-op.
func (r *TicketRepository) MarkClaimed(ctx context.Context, ticketID, userID int64) (bool, error) {
	result, err := r.q.Exec(ctx, `
		UPDATE tickets
		SET status = 'claimed', claimed_at = NOW()
		WHERE id = $1
		  AND user_id = $2
		  AND status = 'won'
	`, ticketID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to claim ticket %d: %w", ticketID, err)
	}
	return result.RowsAffected() == 1, nil
}
