package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DrawStatus represents where a draw is in its lifecycle
type DrawStatus string

const (
	DrawStatusScheduled DrawStatus = "scheduled"
	DrawStatusDrawing   DrawStatus = "drawing"
	DrawStatusCompleted DrawStatus = "completed"
)

const (
	// DrawNumberPrefix prefixes every draw number
	DrawNumberPrefix = "DRAW-"
	// drawNumberDigits is the zero-padded width of the numeric suffix
	drawNumberDigits = 4
)

var drawNumberSuffix = regexp.MustCompile(`(\d+)$`)

// Draw represents a single lottery round
type Draw struct {
	ID             int64      `db:"id"`
	DrawNumber     string     `db:"draw_number"`
	DrawTime       time.Time  `db:"draw_time"`
	Status         DrawStatus `db:"status"`
	WinningNumbers []int      `db:"winning_numbers"` // nil until the draw completes
	JackpotBalance int64      `db:"jackpot_balance"`
	TotalTickets   int64      `db:"total_tickets"`
	TotalPaid      int64      `db:"total_paid"`
	CarryOver      int64      `db:"carry_over"` // jackpot handed to the successor draw
	CompletedAt    *time.Time `db:"completed_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// IsOpen returns true while the draw is the current draw
func (d *Draw) IsOpen() bool {
	return d.Status == DrawStatusScheduled || d.Status == DrawStatusDrawing
}

// IsCompleted returns true if the draw has been settled
func (d *Draw) IsCompleted() bool {
	return d.Status == DrawStatusCompleted
}

// IsDue returns true once draw_time has been reached
func (d *Draw) IsDue(now time.Time) bool {
	return d.Status == DrawStatusScheduled && !d.DrawTime.After(now)
}

// TimeRemaining returns the whole seconds until draw_time, never negative
func (d *Draw) TimeRemaining(now time.Time) int64 {
	remaining := int64(d.DrawTime.Sub(now) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanBuyTickets returns true if the draw is scheduled and outside the purchase cutoff
func (d *Draw) CanBuyTickets(now time.Time, cutoff time.Duration) bool {
	return d.Status == DrawStatusScheduled && d.DrawTime.Sub(now) > cutoff
}

// Complete marks the draw as completed with the given winning numbers
func (d *Draw) Complete(winningNumbers []int, totalPaid, carryOver int64, now time.Time) {
	d.Status = DrawStatusCompleted
	d.WinningNumbers = winningNumbers
	d.TotalPaid = totalPaid
	d.CarryOver = carryOver
	d.CompletedAt = &now
}

// FormatDrawNumber formats a sequence number as a draw number
func FormatDrawNumber(seq int64) string {
	return fmt.Sprintf("%s%0*d", DrawNumberPrefix, drawNumberDigits, seq)
}

// NextDrawNumber returns the draw number following the highest existing one.
// An empty previous number starts the sequence at 1.
func NextDrawNumber(previous string) (string, error) {
	if previous == "" {
		return FormatDrawNumber(1), nil
	}

	match := drawNumberSuffix.FindStringSubmatch(previous)
	if match == nil {
		return "", fmt.Errorf("draw number %q has no numeric suffix", previous)
	}

	seq, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("failed to parse draw number %q: %w", previous, err)
	}

	return FormatDrawNumber(seq + 1), nil
}
