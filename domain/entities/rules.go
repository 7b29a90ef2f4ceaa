package entities

import (
	"fmt"
	"time"
)

// GameRules holds the fixed parameters of the lottery
type GameRules struct {
	PickCount           int           // k: numbers on every ticket and in every winning set
	MaxNumber           int           // numbers are drawn from [1, MaxNumber]
	TicketPrice         int64         // debited per ticket
	JackpotContribution int64         // share of the price added to the draw's jackpot
	PurchaseCutoff      time.Duration // purchases are refused this close to draw_time
	DrawInterval        time.Duration // successor draws are scheduled this far ahead
	StartingBalance     int64         // credited as a deposit when a user is first seen
	Prizes              PrizeTable
}

// DefaultGameRules returns the standard 12-of-24 game
func DefaultGameRules() GameRules {
	return GameRules{
		PickCount:           12,
		MaxNumber:           24,
		TicketPrice:         50,
		JackpotContribution: 15,
		PurchaseCutoff:      120 * time.Second,
		DrawInterval:        time.Hour,
		StartingBalance:     100,
		Prizes:              DefaultPrizeTable(),
	}
}

// Validate checks the rules are internally consistent
func (r GameRules) Validate() error {
	if r.PickCount <= 0 || r.MaxNumber <= 0 {
		return fmt.Errorf("pick count and max number must be positive")
	}
	if r.PickCount > r.MaxNumber {
		return fmt.Errorf("pick count %d exceeds max number %d", r.PickCount, r.MaxNumber)
	}
	if r.TicketPrice <= 0 {
		return fmt.Errorf("ticket price must be positive")
	}
	if r.JackpotContribution < 0 || r.JackpotContribution >= r.TicketPrice {
		return fmt.Errorf("jackpot contribution must be in [0, ticket price)")
	}
	if r.StartingBalance < 0 {
		return fmt.Errorf("starting balance cannot be negative")
	}
	if r.PurchaseCutoff < 0 || r.DrawInterval <= r.PurchaseCutoff {
		return fmt.Errorf("draw interval must exceed the purchase cutoff")
	}
	return nil
}
