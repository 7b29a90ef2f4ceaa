package interfaces

import (
	"context"
	"time"

	"lotto/domain/entities"
	"lotto/domain/events"
)

// UserRepository defines the interface for user data access.
// Lookups return (nil, nil) when the row does not exist.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	// GetByIDForUpdate locks the user row until the unit of work ends
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.User, error)
	GetByExternalID(ctx context.Context, externalID int64) (*entities.User, error)
	// Create inserts a user; a concurrent insert of the same external ID returns (nil, nil)
	Create(ctx context.Context, externalID int64, username string, initialBalance int64) (*entities.User, error)
	// AdjustBalance adds delta to the balance and returns the new balance
	AdjustBalance(ctx context.Context, id int64, delta int64) (int64, error)
	// AddWinnings credits balance and total_won by amount and returns the new balance
	AddWinnings(ctx context.Context, id int64, amount int64) (int64, error)
}

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.Draw, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error)
	// GetCurrentOpenDraw returns the earliest scheduled or drawing draw
	GetCurrentOpenDraw(ctx context.Context) (*entities.Draw, error)
	// GetNextDueDraw returns the earliest scheduled draw with draw_time <= now
	GetNextDueDraw(ctx context.Context, now time.Time) (*entities.Draw, error)
	// GetHighestDrawNumber returns the draw number with the largest numeric suffix, "" if none
	GetHighestDrawNumber(ctx context.Context) (string, error)
	GetLatestCompleted(ctx context.Context) (*entities.Draw, error)
	// Create inserts a scheduled draw; returns entities.ErrDrawConflict if an open draw or the number exists
	Create(ctx context.Context, drawNumber string, drawTime time.Time, jackpotBalance int64) (*entities.Draw, error)
	MarkDrawing(ctx context.Context, id int64) error
	Complete(ctx context.Context, draw *entities.Draw) error
	// AddTicketAggregates increments total_tickets and jackpot_balance of a scheduled draw
	AddTicketAggregates(ctx context.Context, id int64, tickets int64, jackpot int64) error
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	Create(ctx context.Context, ticket *entities.Ticket) error
	GetByID(ctx context.Context, id int64) (*entities.Ticket, error)
	GetActiveByDrawForUpdate(ctx context.Context, drawID int64) ([]*entities.Ticket, error)
	UpdateSettlement(ctx context.Context, ticket *entities.Ticket) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entities.Ticket, error)
	CountByUserAndStatus(ctx context.Context, userID int64) (map[entities.TicketStatus]int64, error)
	// MarkClaimed moves a won ticket to claimed; false if the ticket was not in won state
	MarkClaimed(ctx context.Context, ticketID, userID int64) (bool, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	Record(ctx context.Context, tx *entities.LedgerTransaction) error
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerTransaction, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}
