package cmd

import (
	"context"
	"fmt"

	"lotto/config"
	"lotto/server"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting lotto service...")

	a, err := newApp(ctx, cfg, "lotto-server")
	if err != nil {
		return err
	}
	defer a.Close()

	router := server.NewRouter(a.api, server.Options{
		AdminToken:  cfg.AdminToken,
		CORSOrigins: cfg.CORSOrigins,
	})
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set, admin routes will reject every request")
	}
	httpServer := server.New(cfg.Port, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Run(gctx)
	})

	if cfg.SchedulerEnabled {
		g.Go(func() error {
			stop := a.scheduler.Start(gctx)
			<-gctx.Done()
			stop()
			return nil
		})
	} else {
		log.Info("Draw scheduler disabled, draws advance only through admin triggers")
		// Still make sure a draw is open for purchases
		if _, _, err := a.api.CreateNextDraw(ctx); err != nil {
			log.WithError(err).Warn("Failed to open initial draw")
		}
	}

	log.WithField("port", cfg.Port).Info("Lotto service is running")
	if err := g.Wait(); err != nil {
		return fmt.Errorf("service stopped: %w", err)
	}

	log.Info("Shutdown completed")
	return nil
}
