package application

import (
	"context"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/interfaces"
	"lotto/domain/numbers"
	"lotto/domain/services"
)

// LotteryAPI runs each public lottery operation as one unit of work
type LotteryAPI struct {
	uowFactory UnitOfWorkFactory
	generator  numbers.Generator
	rules      entities.GameRules
	scheduler  *DrawScheduler
}

// NewLotteryAPI creates the lottery application facade. Administrative draw
// operations go through scheduler so they share its lease and settlement path.
func NewLotteryAPI(uowFactory UnitOfWorkFactory, generator numbers.Generator, rules entities.GameRules, scheduler *DrawScheduler) *LotteryAPI {
	return &LotteryAPI{
		uowFactory: uowFactory,
		generator:  generator,
		rules:      rules,
		scheduler:  scheduler,
	}
}

// Rules returns the game rules in effect
func (a *LotteryAPI) Rules() entities.GameRules {
	return a.rules
}

// GetCurrentDraw returns the current draw snapshot, creating the draw if none is open
func (a *LotteryAPI) GetCurrentDraw(ctx context.Context) (*interfaces.DrawStatus, error) {
	var status *interfaces.DrawStatus
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		status, err = a.drawService(uow).GetCurrentDrawStatus(ctx)
		return err
	})
	return status, err
}

// Purchase buys one ticket for userID
func (a *LotteryAPI) Purchase(ctx context.Context, userID int64, selection []int) (*interfaces.PurchaseResult, error) {
	var result *interfaces.PurchaseResult
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		result, err = a.ticketService(uow).Purchase(ctx, userID, selection)
		return err
	})
	return result, err
}

// ListTickets returns one page of a user's tickets
func (a *LotteryAPI) ListTickets(ctx context.Context, userID int64, page, pageSize int) (*entities.TicketPage, error) {
	var result *entities.TicketPage
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		result, err = a.ticketService(uow).ListUserTickets(ctx, userID, page, pageSize)
		return err
	})
	return result, err
}

// ClaimPrize marks a won ticket as claimed
func (a *LotteryAPI) ClaimPrize(ctx context.Context, ticketID, userID int64) (*interfaces.ClaimResult, error) {
	var result *interfaces.ClaimResult
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		result, err = a.ticketService(uow).ClaimPrize(ctx, ticketID, userID)
		return err
	})
	return result, err
}

// QuickPick returns a random valid selection. It touches no state.
func (a *LotteryAPI) QuickPick() ([]int, error) {
	picked, err := a.generator.Generate(a.rules.PickCount, a.rules.MaxNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to generate quick pick: %w", err)
	}
	return picked, nil
}

// EnsureUser returns the account for externalID, provisioning it on first contact
func (a *LotteryAPI) EnsureUser(ctx context.Context, externalID int64, username string) (*interfaces.EnsureUserResult, error) {
	var result *interfaces.EnsureUserResult
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		result, err = a.ticketService(uow).EnsureUser(ctx, externalID, username)
		return err
	})
	return result, err
}

// GetUser returns a user by id
func (a *LotteryAPI) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	var user *entities.User
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		user, err = a.ticketService(uow).GetUser(ctx, userID)
		return err
	})
	return user, err
}

// Deposit credits a user's balance
func (a *LotteryAPI) Deposit(ctx context.Context, userID, amount int64) (*entities.User, error) {
	var user *entities.User
	err := a.inUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		user, err = a.ticketService(uow).Deposit(ctx, userID, amount)
		return err
	})
	return user, err
}

// TriggerDraw settles the open draw now
func (a *LotteryAPI) TriggerDraw(ctx context.Context) (*interfaces.SettlementResult, error) {
	return a.scheduler.TriggerDraw(ctx)
}

// CreateNextDraw schedules a draw if none is open
func (a *LotteryAPI) CreateNextDraw(ctx context.Context) (*entities.Draw, bool, error) {
	return a.scheduler.CreateNextDraw(ctx)
}

// inUnitOfWork commits when fn succeeds and rolls back otherwise
func (a *LotteryAPI) inUnitOfWork(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := a.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (a *LotteryAPI) ticketService(uow UnitOfWork) interfaces.TicketService {
	return services.NewTicketService(
		uow.UserRepository(),
		uow.DrawRepository(),
		uow.TicketRepository(),
		uow.TransactionRepository(),
		uow.EventBus(),
		a.generator,
		a.rules,
	)
}

func (a *LotteryAPI) drawService(uow UnitOfWork) interfaces.DrawService {
	return services.NewDrawService(uow.DrawRepository(), uow.EventBus(), a.rules)
}
