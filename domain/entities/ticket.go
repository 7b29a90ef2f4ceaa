package entities

import (
	"fmt"
	"sort"
	"time"
)

// TicketStatus represents the settlement state of a ticket
type TicketStatus string

const (
	TicketStatusActive  TicketStatus = "active"
	TicketStatusDrawing TicketStatus = "drawing"
	TicketStatusWon     TicketStatus = "won"
	TicketStatusLost    TicketStatus = "lost"
	TicketStatusClaimed TicketStatus = "claimed"
)

// AllTicketStatuses lists every status in lifecycle order
var AllTicketStatuses = []TicketStatus{
	TicketStatusActive,
	TicketStatusDrawing,
	TicketStatusWon,
	TicketStatusLost,
	TicketStatusClaimed,
}

// Ticket is one user's number selection for one draw
type Ticket struct {
	ID             int64        `db:"id"`
	UserID         int64        `db:"user_id"`
	DrawID         int64        `db:"draw_id"`
	TicketNumber   string       `db:"ticket_number"`
	Numbers        []int        `db:"numbers"`
	Status         TicketStatus `db:"status"`
	Price          int64        `db:"price"`
	WinAmount      int64        `db:"win_amount"`
	MatchedCount   int          `db:"matched_count"`
	MatchedNumbers []int        `db:"matched_numbers"`
	PurchasedAt    time.Time    `db:"purchased_at"`
	SettledAt      *time.Time   `db:"settled_at"`
	ClaimedAt      *time.Time   `db:"claimed_at"`
}

// CanTransitionTo enforces forward-only status changes
func (t *Ticket) CanTransitionTo(next TicketStatus) bool {
	switch t.Status {
	case TicketStatusActive, TicketStatusDrawing:
		return next == TicketStatusWon || next == TicketStatusLost || next == TicketStatusDrawing
	case TicketStatusWon:
		return next == TicketStatusClaimed
	}
	return false
}

// Score applies a winning set and the prize table to the ticket. A settled ticket is left untouched.
func (t *Ticket) Score(winningNumbers []int, table PrizeTable, now time.Time) error {
	matched := MatchNumbers(t.Numbers, winningNumbers)
	winAmount := table.Prize(len(matched), len(winningNumbers))

	next := TicketStatusLost
	if winAmount > 0 {
		next = TicketStatusWon
	}
	if !t.CanTransitionTo(next) {
		return fmt.Errorf("ticket %d is %s: %w", t.ID, t.Status, ErrTicketAlreadySettled)
	}

	t.MatchedNumbers = matched
	t.MatchedCount = len(matched)
	t.WinAmount = winAmount
	t.Status = next
	t.SettledAt = &now
	return nil
}

// Claim moves a won ticket to claimed
func (t *Ticket) Claim(now time.Time) error {
	if !t.CanTransitionTo(TicketStatusClaimed) {
		return fmt.Errorf("ticket %d is %s: %w", t.ID, t.Status, ErrTicketNotClaimable)
	}
	t.Status = TicketStatusClaimed
	t.ClaimedAt = &now
	return nil
}

// MatchNumbers returns the ascending intersection of two number sets
func MatchNumbers(ticketNumbers, winningNumbers []int) []int {
	winning := make(map[int]struct{}, len(winningNumbers))
	for _, n := range winningNumbers {
		winning[n] = struct{}{}
	}

	matched := make([]int, 0, len(ticketNumbers))
	for _, n := range ticketNumbers {
		if _, ok := winning[n]; ok {
			matched = append(matched, n)
		}
	}
	sort.Ints(matched)
	return matched
}

// NormalizeSelection validates a number selection against the rules and returns it sorted
func NormalizeSelection(numbers []int, pickCount, maxNumber int) ([]int, error) {
	if len(numbers) != pickCount {
		return nil, NewValidationError("numbers", fmt.Sprintf("exactly %d numbers required, got %d", pickCount, len(numbers)))
	}

	seen := make(map[int]struct{}, len(numbers))
	sorted := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > maxNumber {
			return nil, NewValidationError("numbers", fmt.Sprintf("number %d is outside 1-%d", n, maxNumber))
		}
		if _, dup := seen[n]; dup {
			return nil, NewValidationError("numbers", fmt.Sprintf("number %d is duplicated", n))
		}
		seen[n] = struct{}{}
		sorted = append(sorted, n)
	}
	sort.Ints(sorted)
	return sorted, nil
}

// TicketPage is one page of a user's tickets with per-status totals
type TicketPage struct {
	Tickets  []*Ticket
	Page     int
	PageSize int
	Total    int64
	Counts   map[TicketStatus]int64
}
