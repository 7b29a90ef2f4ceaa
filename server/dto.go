package server

import (
	"time"

	"lotto/domain/entities"
	"lotto/domain/interfaces"
)

type purchaseRequest struct {
	UserID  int64 `json:"user_id" binding:"required"`
	Numbers []int `json:"numbers" binding:"required"`
}

type claimRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type createUserRequest struct {
	ExternalID int64  `json:"external_id" binding:"required"`
	Username   string `json:"username" binding:"required"`
}

type depositRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type drawResponse struct {
	ID             int64      `json:"id"`
	DrawNumber     string     `json:"draw_number"`
	Status         string     `json:"status"`
	DrawTime       time.Time  `json:"draw_time"`
	JackpotBalance int64      `json:"jackpot_balance"`
	TotalTickets   int64      `json:"total_tickets"`
	WinningNumbers []int      `json:"winning_numbers,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type drawStatusResponse struct {
	drawResponse
	TimeRemaining int64 `json:"time_remaining"`
	CanBuyTickets bool  `json:"can_buy_tickets"`
}

type ticketResponse struct {
	ID             int64      `json:"id"`
	TicketNumber   string     `json:"ticket_number"`
	DrawID         int64      `json:"draw_id"`
	Numbers        []int      `json:"numbers"`
	Status         string     `json:"status"`
	Price          int64      `json:"price"`
	WinAmount      int64      `json:"win_amount"`
	MatchedCount   int        `json:"matched_count"`
	MatchedNumbers []int      `json:"matched_numbers"`
	PurchasedAt    time.Time  `json:"purchased_at"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
}

type userResponse struct {
	ID         int64     `json:"id"`
	ExternalID int64     `json:"external_id"`
	Username   string    `json:"username"`
	Balance    int64     `json:"balance"`
	TotalWon   int64     `json:"total_won"`
	CreatedAt  time.Time `json:"created_at"`
}

type settlementResponse struct {
	DrawID         int64          `json:"draw_id"`
	DrawNumber     string         `json:"draw_number"`
	WinningNumbers []int          `json:"winning_numbers"`
	TicketsScored  int            `json:"tickets_scored"`
	WinnerCount    int            `json:"winner_count"`
	TotalPaid      int64          `json:"total_paid"`
	CarryOver      int64          `json:"carry_over"`
	TierCounts     map[string]int `json:"tier_counts"`
}

func toDrawResponse(d *entities.Draw) drawResponse {
	return drawResponse{
		ID:             d.ID,
		DrawNumber:     d.DrawNumber,
		Status:         string(d.Status),
		DrawTime:       d.DrawTime,
		JackpotBalance: d.JackpotBalance,
		TotalTickets:   d.TotalTickets,
		WinningNumbers: d.WinningNumbers,
		CompletedAt:    d.CompletedAt,
	}
}

func toDrawStatusResponse(s *interfaces.DrawStatus) drawStatusResponse {
	resp := drawStatusResponse{
		drawResponse:  toDrawResponse(s.Draw),
		TimeRemaining: s.TimeRemaining,
		CanBuyTickets: s.CanBuyTickets,
	}
	resp.JackpotBalance = s.JackpotBalance
	return resp
}

func toTicketResponse(t *entities.Ticket) ticketResponse {
	matched := t.MatchedNumbers
	if matched == nil {
		matched = []int{}
	}
	return ticketResponse{
		ID:             t.ID,
		TicketNumber:   t.TicketNumber,
		DrawID:         t.DrawID,
		Numbers:        t.Numbers,
		Status:         string(t.Status),
		Price:          t.Price,
		WinAmount:      t.WinAmount,
		MatchedCount:   t.MatchedCount,
		MatchedNumbers: matched,
		PurchasedAt:    t.PurchasedAt,
		SettledAt:      t.SettledAt,
		ClaimedAt:      t.ClaimedAt,
	}
}

func toUserResponse(u *entities.User) userResponse {
	return userResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Username:   u.Username,
		Balance:    u.Balance,
		TotalWon:   u.TotalWon,
		CreatedAt:  u.CreatedAt,
	}
}

var tierNames = map[entities.PrizeTier]string{
	entities.PrizeTierNone:    "none",
	entities.PrizeTierJackpot: "jackpot",
	entities.PrizeTierSecond:  "second",
	entities.PrizeTierThird:   "third",
	entities.PrizeTierFourth:  "fourth",
	entities.PrizeTierFifth:   "fifth",
}

func toSettlementResponse(r *interfaces.SettlementResult) settlementResponse {
	tiers := make(map[string]int, len(r.TierCounts))
	for tier, count := range r.TierCounts {
		name, ok := tierNames[tier]
		if !ok {
			continue
		}
		tiers[name] = count
	}
	return settlementResponse{
		DrawID:         r.DrawID,
		DrawNumber:     r.DrawNumber,
		WinningNumbers: r.WinningNumbers,
		TicketsScored:  r.TicketsScored,
		WinnerCount:    r.WinnerCount,
		TotalPaid:      r.TotalPaid,
		CarryOver:      r.CarryOver,
		TierCounts:     tiers,
	}
}
