package cmd

import (
	"context"
	"fmt"

	"lotto/config"

	log "github.com/sirupsen/logrus"
)

// RunDrawCommand performs a one-off draw administration action: "trigger" or "create-next"
func RunDrawCommand(ctx context.Context, action string) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	a, err := newApp(ctx, cfg, "lotto-admin")
	if err != nil {
		return err
	}
	defer a.Close()

	switch action {
	case "trigger":
		result, err := a.api.TriggerDraw(ctx)
		if err != nil {
			return fmt.Errorf("failed to trigger draw: %w", err)
		}
		log.WithFields(log.Fields{
			"draw_number":     result.DrawNumber,
			"winning_numbers": result.WinningNumbers,
			"tickets_scored":  result.TicketsScored,
			"winners":         result.WinnerCount,
			"total_paid":      result.TotalPaid,
			"carry_over":      result.CarryOver,
		}).Info("Draw settled")
	case "create-next":
		draw, created, err := a.api.CreateNextDraw(ctx)
		if err != nil {
			return fmt.Errorf("failed to create next draw: %w", err)
		}
		log.WithFields(log.Fields{
			"draw_number": draw.DrawNumber,
			"draw_time":   draw.DrawTime,
			"created":     created,
		}).Info("Open draw ready")
	default:
		return fmt.Errorf("unknown draw command: %s", action)
	}

	return nil
}
