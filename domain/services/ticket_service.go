package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"
	"lotto/domain/numbers"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultPageSize is used when a ticket listing does not ask for one
	DefaultPageSize = 20
	// MaxPageSize caps ticket listings
	MaxPageSize = 100
)

// ticketService implements the ticket ledger: purchases, listings, claims and account funding
type ticketService struct {
	userRepo        interfaces.UserRepository
	drawRepo        interfaces.DrawRepository
	ticketRepo      interfaces.TicketRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
	generator       numbers.Generator
	rules           entities.GameRules
	draws           *drawService
	now             func() time.Time
}

// NewTicketService creates a new ticket service
func NewTicketService(
	userRepo interfaces.UserRepository,
	drawRepo interfaces.DrawRepository,
	ticketRepo interfaces.TicketRepository,
	transactionRepo interfaces.TransactionRepository,
	eventPublisher interfaces.EventPublisher,
	generator numbers.Generator,
	rules entities.GameRules,
) interfaces.TicketService {
	return &ticketService{
		userRepo:        userRepo,
		drawRepo:        drawRepo,
		ticketRepo:      ticketRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
		generator:       generator,
		rules:           rules,
		draws: &drawService{
			drawRepo:       drawRepo,
			eventPublisher: eventPublisher,
			rules:          rules,
			now:            utcNow,
		},
		now: utcNow,
	}
}

// Purchase buys one ticket on the current draw. Every precondition is checked before the
// balance is touched; the caller's unit of work discards everything on error.
func (s *ticketService) Purchase(ctx context.Context, userID int64, selection []int) (*interfaces.PurchaseResult, error) {
	sorted, err := entities.NormalizeSelection(selection, s.rules.PickCount, s.rules.MaxNumber)
	if err != nil {
		return nil, err
	}

	current, err := s.draws.GetOrCreateCurrentDraw(ctx)
	if err != nil {
		return nil, err
	}

	// Draw row first, then user row: settlement takes the same order
	draw, err := s.drawRepo.GetByIDForUpdate(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw: %w", err)
	}
	if draw == nil {
		return nil, entities.NewNotFoundError("draw", current.ID)
	}

	now := s.now()
	if !draw.CanBuyTickets(now, s.rules.PurchaseCutoff) {
		return nil, &entities.PurchaseWindowClosedError{
			DrawID:           draw.ID,
			SecondsRemaining: draw.TimeRemaining(now),
		}
	}

	user, err := s.userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if user == nil {
		return nil, entities.NewNotFoundError("user", userID)
	}
	if !user.CanAfford(s.rules.TicketPrice) {
		return nil, &entities.InsufficientFundsError{Balance: user.Balance, Price: s.rules.TicketPrice}
	}

	newBalance, err := s.userRepo.AdjustBalance(ctx, user.ID, -s.rules.TicketPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to debit user: %w", err)
	}

	ticket := &entities.Ticket{
		UserID:       user.ID,
		DrawID:       draw.ID,
		TicketNumber: uuid.NewString(),
		Numbers:      sorted,
		Status:       entities.TicketStatusActive,
		Price:        s.rules.TicketPrice,
		PurchasedAt:  now,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	drawID := draw.ID
	ticketID := ticket.ID
	if err := recordBalanceChange(ctx, s.transactionRepo, s.eventPublisher, &entities.LedgerTransaction{
		UserID:       user.ID,
		Type:         entities.TransactionTypeTicketPurchase,
		Amount:       s.rules.TicketPrice,
		BalanceAfter: newBalance,
		DrawID:       &drawID,
		TicketID:     &ticketID,
		Metadata: map[string]any{
			"draw_number":   draw.DrawNumber,
			"ticket_number": ticket.TicketNumber,
		},
	}); err != nil {
		return nil, err
	}

	if err := s.drawRepo.AddTicketAggregates(ctx, draw.ID, 1, s.rules.JackpotContribution); err != nil {
		return nil, fmt.Errorf("failed to update draw aggregates: %w", err)
	}
	draw.TotalTickets++
	draw.JackpotBalance += s.rules.JackpotContribution

	if err := s.eventPublisher.Publish(events.TicketPurchasedEvent{
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		UserID:       user.ID,
		DrawID:       draw.ID,
		Numbers:      ticket.Numbers,
		Price:        ticket.Price,
	}); err != nil {
		log.WithError(err).Error("Failed to publish ticket purchased event")
	}

	log.WithFields(log.Fields{
		"userID":     user.ID,
		"drawID":     draw.ID,
		"ticketID":   ticket.ID,
		"newBalance": newBalance,
	}).Info("Ticket purchased")

	return &interfaces.PurchaseResult{
		Ticket:     ticket,
		NewBalance: newBalance,
		Draw:       draw,
	}, nil
}

// ListUserTickets returns one page of a user's tickets, newest first, with per-status totals
func (s *ticketService) ListUserTickets(ctx context.Context, userID int64, page, pageSize int) (*entities.TicketPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page > math.MaxInt/pageSize {
		return nil, entities.NewValidationError("page", fmt.Sprintf("page %d is out of range", page))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entities.NewNotFoundError("user", userID)
	}

	tickets, err := s.ticketRepo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	counts, err := s.ticketRepo.CountByUserAndStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &entities.TicketPage{
		Tickets:  tickets,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Counts:   counts,
	}, nil
}

// ClaimPrize acknowledges a won ticket. Prizes are credited at settlement, so claiming
// never moves money and claiming twice reports the earlier claim.
func (s *ticketService) ClaimPrize(ctx context.Context, ticketID, userID int64) (*interfaces.ClaimResult, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil || ticket.UserID != userID {
		return nil, entities.NewNotFoundError("ticket", ticketID)
	}

	if ticket.Status == entities.TicketStatusClaimed {
		return &interfaces.ClaimResult{Ticket: ticket, AlreadyClaimed: true}, nil
	}
	if !ticket.CanTransitionTo(entities.TicketStatusClaimed) {
		return nil, fmt.Errorf("ticket %d is %s: %w", ticketID, ticket.Status, entities.ErrTicketNotClaimable)
	}

	claimed, err := s.ticketRepo.MarkClaimed(ctx, ticketID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim ticket: %w", err)
	}
	if !claimed {
		// Lost a race with another claim of the same ticket
		current, err := s.ticketRepo.GetByID(ctx, ticketID)
		if err != nil {
			return nil, fmt.Errorf("failed to get ticket: %w", err)
		}
		if current != nil && current.Status == entities.TicketStatusClaimed {
			return &interfaces.ClaimResult{Ticket: current, AlreadyClaimed: true}, nil
		}
		return nil, fmt.Errorf("ticket %d: %w", ticketID, entities.ErrTicketNotClaimable)
	}

	if err := ticket.Claim(s.now()); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.PrizeClaimedEvent{
		TicketID:  ticket.ID,
		UserID:    ticket.UserID,
		WinAmount: ticket.WinAmount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish prize claimed event")
	}

	return &interfaces.ClaimResult{Ticket: ticket}, nil
}

// QuickPick suggests a random valid selection
func (s *ticketService) QuickPick() ([]int, error) {
	picked, err := s.generator.Generate(s.rules.PickCount, s.rules.MaxNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to generate quick pick: %w", err)
	}
	return picked, nil
}

// EnsureUser returns the account for an external identity, creating and funding it on first contact
func (s *ticketService) EnsureUser(ctx context.Context, externalID int64, username string) (*interfaces.EnsureUserResult, error) {
	username = strings.TrimSpace(username)
	if externalID <= 0 {
		return nil, entities.NewValidationError("external_id", "must be positive")
	}
	if username == "" {
		return nil, entities.NewValidationError("username", "must not be empty")
	}

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return &interfaces.EnsureUserResult{User: user}, nil
	}

	user, err = s.userRepo.Create(ctx, externalID, username, s.rules.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if user == nil {
		// Created concurrently by another request
		user, err = s.userRepo.GetByExternalID(ctx, externalID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, errors.New("user vanished after concurrent create")
		}
		return &interfaces.EnsureUserResult{User: user}, nil
	}

	if s.rules.StartingBalance > 0 {
		if err := recordBalanceChange(ctx, s.transactionRepo, s.eventPublisher, &entities.LedgerTransaction{
			UserID:       user.ID,
			Type:         entities.TransactionTypeDeposit,
			Amount:       s.rules.StartingBalance,
			BalanceAfter: user.Balance,
			Metadata:     map[string]any{"reason": "starting_balance"},
		}); err != nil {
			return nil, err
		}
	}

	if err := s.eventPublisher.Publish(events.UserCreatedEvent{
		UserID:         user.ID,
		ExternalID:     user.ExternalID,
		Username:       user.Username,
		InitialBalance: user.Balance,
	}); err != nil {
		log.WithError(err).Error("Failed to publish user created event")
	}

	log.WithFields(log.Fields{
		"userID":     user.ID,
		"externalID": externalID,
		"balance":    user.Balance,
	}).Info("Created user")

	return &interfaces.EnsureUserResult{User: user, Created: true}, nil
}

// GetUser returns a user by ID
func (s *ticketService) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entities.NewNotFoundError("user", userID)
	}
	return user, nil
}

// Deposit credits a user's balance and records a deposit transaction
func (s *ticketService) Deposit(ctx context.Context, userID int64, amount int64) (*entities.User, error) {
	if amount <= 0 {
		return nil, entities.NewValidationError("amount", "must be positive")
	}

	user, err := s.userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if user == nil {
		return nil, entities.NewNotFoundError("user", userID)
	}

	newBalance, err := s.userRepo.AdjustBalance(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit user: %w", err)
	}

	if err := recordBalanceChange(ctx, s.transactionRepo, s.eventPublisher, &entities.LedgerTransaction{
		UserID:       userID,
		Type:         entities.TransactionTypeDeposit,
		Amount:       amount,
		BalanceAfter: newBalance,
		Metadata:     map[string]any{"reason": "admin_deposit"},
	}); err != nil {
		return nil, err
	}

	user.Balance = newBalance
	return user, nil
}
