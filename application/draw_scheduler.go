package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lotto/domain/entities"
	"lotto/domain/interfaces"
	"lotto/domain/numbers"
	"lotto/domain/services"

	log "github.com/sirupsen/logrus"
)

// SchedulerLeaseKey is the lease key shared by every scheduler instance
const SchedulerLeaseKey = "lotto:scheduler:leader"

// DrawScheduler settles due draws and provisions their successors
type DrawScheduler struct {
	uowFactory UnitOfWorkFactory
	generator  numbers.Generator
	rules      entities.GameRules
	locker     Locker
	interval   time.Duration
	leaseTTL   time.Duration
	now        func() time.Time
	onTick     func(*interfaces.SettlementResult, error)
}

// NewDrawScheduler creates a new draw scheduler. A nil locker means single-instance mode.
func NewDrawScheduler(
	uowFactory UnitOfWorkFactory,
	generator numbers.Generator,
	rules entities.GameRules,
	locker Locker,
	interval time.Duration,
	leaseTTL time.Duration,
) *DrawScheduler {
	if locker == nil {
		log.Warn("No scheduler lease configured, running more than one instance may settle a draw twice")
		locker = NoopLocker{}
	}
	return &DrawScheduler{
		uowFactory: uowFactory,
		generator:  generator,
		rules:      rules,
		locker:     locker,
		interval:   interval,
		leaseTTL:   leaseTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// OnTick registers a callback run after every scheduled tick
func (s *DrawScheduler) OnTick(fn func(result *interfaces.SettlementResult, err error)) {
	s.onTick = fn
}

// Start begins ticking and returns a function that stops the scheduler
func (s *DrawScheduler) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", s.interval).Info("Draw scheduler started")

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			result, err := s.Tick(ctx)
			if err != nil {
				log.WithError(err).Error("Draw scheduler tick failed")
			}
			if s.onTick != nil {
				s.onTick(result, err)
			}

			select {
			case <-ctx.Done():
				log.Info("Draw scheduler shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Draw scheduler shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopChan) })
	}
}

// Tick runs one scheduling pass: settle at most one due draw, then make sure
// an open draw exists. It returns nil without error when there was nothing to settle.
func (s *DrawScheduler) Tick(ctx context.Context) (*interfaces.SettlementResult, error) {
	release, acquired, err := s.locker.TryAcquire(ctx, SchedulerLeaseKey, s.leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scheduler lease: %w", err)
	}
	if !acquired {
		log.Debug("Scheduler lease held by another instance, skipping tick")
		return nil, nil
	}
	defer release()

	due, err := s.findDueDraw(ctx)
	if err != nil {
		return nil, err
	}

	if due == nil {
		if _, _, err := s.createNextDraw(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	result, err := s.settleDraw(ctx, due.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to settle draw %s: %w", due.DrawNumber, err)
	}

	// A failed successor insert is picked up by the next tick
	if _, _, err := s.createNextDraw(ctx); err != nil {
		log.WithError(err).WithField("settledDraw", due.DrawNumber).Warn("Failed to create next draw")
	}

	return result, nil
}

// TriggerDraw settles the current open draw immediately, regardless of its draw time,
// and schedules its successor
func (s *DrawScheduler) TriggerDraw(ctx context.Context) (*interfaces.SettlementResult, error) {
	release, acquired, err := s.locker.TryAcquire(ctx, SchedulerLeaseKey, s.leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scheduler lease: %w", err)
	}
	if !acquired {
		return nil, ErrSchedulerBusy
	}
	defer release()

	open, err := s.findOpenDraw(ctx)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, entities.NewNotFoundError("open draw", 0)
	}

	log.WithFields(log.Fields{
		"drawID":     open.ID,
		"drawNumber": open.DrawNumber,
		"drawTime":   open.DrawTime,
	}).Info("Manually triggering draw")

	result, err := s.settleDraw(ctx, open.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to settle draw %s: %w", open.DrawNumber, err)
	}

	if _, _, err := s.createNextDraw(ctx); err != nil {
		log.WithError(err).WithField("settledDraw", open.DrawNumber).Warn("Failed to create next draw")
	}

	return result, nil
}

// CreateNextDraw schedules a successor draw unless one is already open
func (s *DrawScheduler) CreateNextDraw(ctx context.Context) (*entities.Draw, bool, error) {
	return s.createNextDraw(ctx)
}

func (s *DrawScheduler) findDueDraw(ctx context.Context) (*entities.Draw, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	drawService := services.NewDrawService(uow.DrawRepository(), uow.EventBus(), s.rules)
	return drawService.GetNextDueDraw(ctx, s.now())
}

func (s *DrawScheduler) findOpenDraw(ctx context.Context) (*entities.Draw, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw, err := uow.DrawRepository().GetCurrentOpenDraw(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current draw: %w", err)
	}
	return draw, nil
}

// settleDraw runs the settlement engine for one draw in its own unit of work
func (s *DrawScheduler) settleDraw(ctx context.Context, drawID int64) (*interfaces.SettlementResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := services.NewSettlementService(
		uow.DrawRepository(),
		uow.TicketRepository(),
		uow.UserRepository(),
		uow.TransactionRepository(),
		uow.EventBus(),
		s.generator,
		s.rules,
	)

	result, err := settlementService.Settle(ctx, drawID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"drawID":        result.DrawID,
		"drawNumber":    result.DrawNumber,
		"ticketsScored": result.TicketsScored,
		"winners":       result.WinnerCount,
		"totalPaid":     result.TotalPaid,
		"carryOver":     result.CarryOver,
	}).Info("Draw settled")

	return result, nil
}

func (s *DrawScheduler) createNextDraw(ctx context.Context) (*entities.Draw, bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	drawService := services.NewDrawService(uow.DrawRepository(), uow.EventBus(), s.rules)
	draw, created, err := drawService.CreateNextDraw(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return draw, created, nil
}
