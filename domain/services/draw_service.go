package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// drawService resolves and provisions draws. The current draw is always queried, never cached.
type drawService struct {
	drawRepo       interfaces.DrawRepository
	eventPublisher interfaces.EventPublisher
	rules          entities.GameRules
	now            func() time.Time
}

// NewDrawService creates a new draw service
func NewDrawService(
	drawRepo interfaces.DrawRepository,
	eventPublisher interfaces.EventPublisher,
	rules entities.GameRules,
) interfaces.DrawService {
	return &drawService{
		drawRepo:       drawRepo,
		eventPublisher: eventPublisher,
		rules:          rules,
		now:            utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// GetOrCreateCurrentDraw returns the open draw, creating one if none exists
func (s *drawService) GetOrCreateCurrentDraw(ctx context.Context) (*entities.Draw, error) {
	draw, err := s.drawRepo.GetCurrentOpenDraw(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current draw: %w", err)
	}
	if draw != nil {
		return draw, nil
	}

	draw, _, err = s.createDraw(ctx)
	if err != nil {
		return nil, err
	}
	return draw, nil
}

// GetCurrentDrawStatus returns the snapshot served to callers polling the current draw.
// It never creates a draw.
func (s *drawService) GetCurrentDrawStatus(ctx context.Context) (*interfaces.DrawStatus, error) {
	draw, err := s.drawRepo.GetCurrentOpenDraw(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current draw: %w", err)
	}
	if draw == nil {
		return nil, entities.NewNotFoundError("open draw", 0)
	}

	now := s.now()
	return &interfaces.DrawStatus{
		Draw:           draw,
		TimeRemaining:  draw.TimeRemaining(now),
		CanBuyTickets:  draw.CanBuyTickets(now, s.rules.PurchaseCutoff),
		JackpotBalance: draw.JackpotBalance,
	}, nil
}

// GetNextDueDraw returns the earliest scheduled draw whose draw_time has passed
func (s *drawService) GetNextDueDraw(ctx context.Context, now time.Time) (*entities.Draw, error) {
	draw, err := s.drawRepo.GetNextDueDraw(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get next due draw: %w", err)
	}
	return draw, nil
}

// CreateNextDraw schedules a successor draw. It is a no-op returning the open draw if one exists.
func (s *drawService) CreateNextDraw(ctx context.Context) (*entities.Draw, bool, error) {
	open, err := s.drawRepo.GetCurrentOpenDraw(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get current draw: %w", err)
	}
	if open != nil {
		return open, false, nil
	}
	return s.createDraw(ctx)
}

// createDraw allocates the next draw number and inserts a scheduled draw. Losing a race to a
// concurrent creator is not an error: the winner's draw is returned instead.
func (s *drawService) createDraw(ctx context.Context) (*entities.Draw, bool, error) {
	highest, err := s.drawRepo.GetHighestDrawNumber(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get highest draw number: %w", err)
	}

	drawNumber, err := entities.NextDrawNumber(highest)
	if err != nil {
		return nil, false, fmt.Errorf("failed to allocate draw number: %w", err)
	}

	// Jackpot nobody hit rolls into the successor
	var seed int64
	previous, err := s.drawRepo.GetLatestCompleted(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get latest completed draw: %w", err)
	}
	if previous != nil {
		seed = previous.CarryOver
	}

	drawTime := s.now().Add(s.rules.DrawInterval)
	draw, err := s.drawRepo.Create(ctx, drawNumber, drawTime, seed)
	if errors.Is(err, entities.ErrDrawConflict) {
		log.WithField("drawNumber", drawNumber).Info("Draw created concurrently, using existing open draw")
		existing, getErr := s.drawRepo.GetCurrentOpenDraw(ctx)
		if getErr != nil {
			return nil, false, fmt.Errorf("failed to get current draw: %w", getErr)
		}
		if existing == nil {
			return nil, false, fmt.Errorf("failed to create draw %s: %w", drawNumber, err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create draw: %w", err)
	}

	log.WithFields(log.Fields{
		"drawID":     draw.ID,
		"drawNumber": draw.DrawNumber,
		"drawTime":   draw.DrawTime,
		"seed":       seed,
	}).Info("Scheduled new draw")

	if err := s.eventPublisher.Publish(events.DrawCreatedEvent{
		DrawID:         draw.ID,
		DrawNumber:     draw.DrawNumber,
		DrawTime:       draw.DrawTime.Unix(),
		JackpotBalance: draw.JackpotBalance,
	}); err != nil {
		log.WithError(err).Error("Failed to publish draw created event")
	}

	return draw, true, nil
}
