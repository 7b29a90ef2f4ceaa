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

const drawColumns = `id, draw_number, draw_time, status, winning_numbers, jackpot_balance,
	total_tickets, total_paid, carry_over, completed_at, created_at`

// DrawRepository implements draw data access
type DrawRepository struct {
	q Queryable
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(db *database.DB) *DrawRepository {
	return &DrawRepository{q: db.Pool}
}

func newDrawRepositoryWithTx(tx Queryable) *DrawRepository {
	return &DrawRepository{q: tx}
}

func scanDraw(row pgx.Row) (*entities.Draw, error) {
	var draw entities.Draw
	err := row.Scan(
		&draw.ID,
		&draw.DrawNumber,
		&draw.DrawTime,
		&draw.Status,
		&draw.WinningNumbers,
		&draw.JackpotBalance,
		&draw.TotalTickets,
		&draw.TotalPaid,
		&draw.CarryOver,
		&draw.CompletedAt,
		&draw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &draw, nil
}

// queryOne runs a single-row draw query, mapping no rows to (nil, nil)
func (r *DrawRepository) queryOne(ctx context.Context, what string, query string, args ...any) (*entities.Draw, error) {
	draw, err := scanDraw(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return draw, nil
}

// GetByID retrieves a draw by its ID
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	return r.queryOne(ctx, fmt.Sprintf("draw %d", id),
		`SELECT `+drawColumns+` FROM draws WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a draw by ID with row lock for update
func (r *DrawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	return r.queryOne(ctx, fmt.Sprintf("draw %d for update", id),
		`SELECT `+drawColumns+` FROM draws WHERE id = $1 FOR UPDATE`, id)
}

// GetCurrentOpenDraw returns the draw that is scheduled or drawing, if any
func (r *DrawRepository) GetCurrentOpenDraw(ctx context.Context) (*entities.Draw, error) {
	return r.queryOne(ctx, "current open draw", `
		SELECT `+drawColumns+`
		FROM draws
		WHERE status IN ('scheduled', 'drawing')
		ORDER BY draw_time ASC
		LIMIT 1
	`)
}

// GetNextDueDraw returns the earliest scheduled draw whose draw_time has passed
func (r *DrawRepository) GetNextDueDraw(ctx context.Context, now time.Time) (*entities.Draw, error) {
	return r.queryOne(ctx, "next due draw", `
		SELECT `+drawColumns+`
		FROM draws
		WHERE status = 'scheduled'
		  AND draw_time <= $1
		ORDER BY draw_time ASC
		LIMIT 1
	`, now)
}

// GetLatestCompleted returns the most recently settled draw
func (r *DrawRepository) GetLatestCompleted(ctx context.Context) (*entities.Draw, error) {
	return r.queryOne(ctx, "latest completed draw", `
		SELECT `+drawColumns+`
		FROM draws
		WHERE status = 'completed'
		ORDER BY completed_at DESC, id DESC
		LIMIT 1
	`)
}

// GetHighestDrawNumber returns the draw number with the largest numeric suffix, "" when there are no draws.
// Ordering by the parsed suffix keeps DRAW-10000 above DRAW-9999.
func (r *DrawRepository) GetHighestDrawNumber(ctx context.Context) (string, error) {
	query := `
		SELECT draw_number
		FROM draws
		ORDER BY CAST(substring(draw_number FROM '([0-9]+)$') AS BIGINT) DESC NULLS LAST, id DESC
		LIMIT 1
	`

	var drawNumber string
	err := r.q.QueryRow(ctx, query).Scan(&drawNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get highest draw number: %w", err)
	}
	return drawNumber, nil
}

// Create inserts a scheduled draw. A clash with the open draw or an existing
// draw number returns entities.ErrDrawConflict.
func (r *DrawRepository) Create(ctx context.Context, drawNumber string, drawTime time.Time, jackpotBalance int64) (*entities.Draw, error) {
	query := `
		INSERT INTO draws (draw_number, draw_time, status, jackpot_balance)
		VALUES ($1, $2, 'scheduled', $3)
		ON CONFLICT DO NOTHING
		RETURNING ` + drawColumns

	draw, err := scanDraw(r.q.QueryRow(ctx, query, drawNumber, drawTime, jackpotBalance))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrDrawConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create draw %s: %w", drawNumber, err)
	}
	return draw, nil
}

// MarkDrawing moves an open draw into the drawing state
func (r *DrawRepository) MarkDrawing(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `
		UPDATE draws
		SET status = 'drawing'
		WHERE id = $1
		  AND status IN ('scheduled', 'drawing')
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark draw %d drawing: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found or already completed", id)
	}
	return nil
}

// Complete records the settlement outcome. A draw completes at most once.
func (r *DrawRepository) Complete(ctx context.Context, draw *entities.Draw) error {
	result, err := r.q.Exec(ctx, `
		UPDATE draws
		SET status = 'completed',
		    winning_numbers = $2,
		    total_paid = $3,
		    carry_over = $4,
		    completed_at = $5
		WHERE id = $1
		  AND status <> 'completed'
	`, draw.ID, draw.WinningNumbers, draw.TotalPaid, draw.CarryOver, draw.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to complete draw %d: %w", draw.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("draw %d: %w", draw.ID, entities.ErrDrawAlreadyCompleted)
	}
	return nil
}

// AddTicketAggregates atomically increments ticket count and jackpot of a scheduled draw
func (r *DrawRepository) AddTicketAggregates(ctx context.Context, id int64, tickets int64, jackpot int64) error {
	result, err := r.q.Exec(ctx, `
		UPDATE draws
		SET total_tickets = total_tickets + $2,
		    jackpot_balance = jackpot_balance + $3
		WHERE id = $1
		  AND status = 'scheduled'
	`, id, tickets, jackpot)
	if err != nil {
		return fmt.Errorf("failed to update aggregates for draw %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found or no longer scheduled", id)
	}
	return nil
}
