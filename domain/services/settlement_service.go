package services

import (
	"context"
	"fmt"
	"time"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"
	"lotto/domain/numbers"

	log "github.com/sirupsen/logrus"
)

// settlementService reveals winning numbers for a draw, scores its tickets and credits winners.
// The caller runs Settle inside one unit of work: either every ticket update, credit and the
// draw completion persist, or none do.
type settlementService struct {
	drawRepo        interfaces.DrawRepository
	ticketRepo      interfaces.TicketRepository
	userRepo        interfaces.UserRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
	generator       numbers.Generator
	rules           entities.GameRules
	now             func() time.Time
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	drawRepo interfaces.DrawRepository,
	ticketRepo interfaces.TicketRepository,
	userRepo interfaces.UserRepository,
	transactionRepo interfaces.TransactionRepository,
	eventPublisher interfaces.EventPublisher,
	generator numbers.Generator,
	rules entities.GameRules,
) interfaces.SettlementService {
	return &settlementService{
		drawRepo:        drawRepo,
		ticketRepo:      ticketRepo,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
		generator:       generator,
		rules:           rules,
		now:             utcNow,
	}
}

// Settle settles a draw exactly once. A completed draw is refused with ErrDrawAlreadyCompleted.
func (s *settlementService) Settle(ctx context.Context, drawID int64) (*interfaces.SettlementResult, error) {
	// Holding the draw row blocks purchases for the rest of the unit
	draw, err := s.drawRepo.GetByIDForUpdate(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw: %w", err)
	}
	if draw == nil {
		return nil, entities.NewNotFoundError("draw", drawID)
	}
	if draw.IsCompleted() {
		return nil, entities.ErrDrawAlreadyCompleted
	}

	if err := s.drawRepo.MarkDrawing(ctx, draw.ID); err != nil {
		return nil, fmt.Errorf("failed to mark draw drawing: %w", err)
	}

	winning, err := s.generator.Generate(s.rules.PickCount, s.rules.MaxNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to generate winning numbers: %w", err)
	}

	tickets, err := s.ticketRepo.GetActiveByDrawForUpdate(ctx, draw.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	now := s.now()
	result := &interfaces.SettlementResult{
		DrawID:         draw.ID,
		DrawNumber:     draw.DrawNumber,
		WinningNumbers: winning,
		TicketsScored:  len(tickets),
		TierCounts:     make(map[entities.PrizeTier]int),
	}

	for _, ticket := range tickets {
		if err := ticket.Score(winning, s.rules.Prizes, now); err != nil {
			return nil, fmt.Errorf("failed to score ticket %d: %w", ticket.ID, err)
		}
		if err := s.ticketRepo.UpdateSettlement(ctx, ticket); err != nil {
			return nil, fmt.Errorf("failed to update ticket %d: %w", ticket.ID, err)
		}

		tier := s.rules.Prizes.Tier(ticket.MatchedCount, len(winning))
		result.TierCounts[tier]++
		if ticket.WinAmount == 0 {
			continue
		}

		if err := s.creditWinner(ctx, draw, ticket); err != nil {
			return nil, err
		}
		result.WinnerCount++
		result.TotalPaid += ticket.WinAmount
		result.Winners = append(result.Winners, ticket)
	}

	// An unhit jackpot rolls over to the next draw
	if result.TierCounts[entities.PrizeTierJackpot] == 0 {
		result.CarryOver = draw.JackpotBalance
	}

	draw.Complete(winning, result.TotalPaid, result.CarryOver, now)
	if err := s.drawRepo.Complete(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to complete draw: %w", err)
	}

	if err := s.eventPublisher.Publish(events.DrawSettledEvent{
		DrawID:         draw.ID,
		DrawNumber:     draw.DrawNumber,
		WinningNumbers: winning,
		TicketsScored:  result.TicketsScored,
		WinnerCount:    result.WinnerCount,
		TotalPaid:      result.TotalPaid,
		CarryOver:      result.CarryOver,
	}); err != nil {
		log.WithError(err).Error("Failed to publish draw settled event")
	}

	log.WithFields(log.Fields{
		"drawID":         draw.ID,
		"drawNumber":     draw.DrawNumber,
		"winningNumbers": winning,
		"ticketsScored":  result.TicketsScored,
		"winnerCount":    result.WinnerCount,
		"totalPaid":      result.TotalPaid,
		"carryOver":      result.CarryOver,
	}).Info("Draw settled")

	return result, nil
}

// creditWinner pays a winning ticket into its owner's balance and total_won
func (s *settlementService) creditWinner(ctx context.Context, draw *entities.Draw, ticket *entities.Ticket) error {
	newBalance, err := s.userRepo.AddWinnings(ctx, ticket.UserID, ticket.WinAmount)
	if err != nil {
		return fmt.Errorf("failed to credit user %d: %w", ticket.UserID, err)
	}

	drawID := draw.ID
	ticketID := ticket.ID
	return recordBalanceChange(ctx, s.transactionRepo, s.eventPublisher, &entities.LedgerTransaction{
		UserID:       ticket.UserID,
		Type:         entities.TransactionTypeWin,
		Amount:       ticket.WinAmount,
		BalanceAfter: newBalance,
		DrawID:       &drawID,
		TicketID:     &ticketID,
		Metadata: map[string]any{
			"draw_number":     draw.DrawNumber,
			"matched_count":   ticket.MatchedCount,
			"matched_numbers": ticket.MatchedNumbers,
		},
	})
}
