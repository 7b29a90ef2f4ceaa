package interfaces

import (
	"context"
	"time"

	"lotto/domain/entities"
)

// PurchaseResult is returned by a successful ticket purchase
type PurchaseResult struct {
	Ticket     *entities.Ticket
	NewBalance int64
	Draw       *entities.Draw
}

// ClaimResult is returned by ClaimPrize
type ClaimResult struct {
	Ticket         *entities.Ticket
	AlreadyClaimed bool
}

// EnsureUserResult is returned by EnsureUser
type EnsureUserResult struct {
	User    *entities.User
	Created bool
}

// DrawStatus is a read-only snapshot of the current draw
type DrawStatus struct {
	Draw           *entities.Draw
	TimeRemaining  int64
	CanBuyTickets  bool
	JackpotBalance int64
}

// SettlementResult describes a settled draw
type SettlementResult struct {
	DrawID         int64
	DrawNumber     string
	WinningNumbers []int
	TicketsScored  int
	WinnerCount    int
	TotalPaid      int64
	CarryOver      int64
	TierCounts     map[entities.PrizeTier]int
	Winners        []*entities.Ticket
}

// TicketService defines the purchase path and ticket queries
type TicketService interface {
	Purchase(ctx context.Context, userID int64, numbers []int) (*PurchaseResult, error)
	ListUserTickets(ctx context.Context, userID int64, page, pageSize int) (*entities.TicketPage, error)
	ClaimPrize(ctx context.Context, ticketID, userID int64) (*ClaimResult, error)
	QuickPick() ([]int, error)
	EnsureUser(ctx context.Context, externalID int64, username string) (*EnsureUserResult, error)
	GetUser(ctx context.Context, userID int64) (*entities.User, error)
	Deposit(ctx context.Context, userID int64, amount int64) (*entities.User, error)
}

// DrawService defines current draw resolution and draw provisioning
type DrawService interface {
	GetOrCreateCurrentDraw(ctx context.Context) (*entities.Draw, error)
	GetCurrentDrawStatus(ctx context.Context) (*DrawStatus, error)
	GetNextDueDraw(ctx context.Context, now time.Time) (*entities.Draw, error)
	// CreateNextDraw schedules a successor unless an open draw already exists
	CreateNextDraw(ctx context.Context) (*entities.Draw, bool, error)
}

// SettlementService defines the settlement engine
type SettlementService interface {
	Settle(ctx context.Context, drawID int64) (*SettlementResult, error)
}
