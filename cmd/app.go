package cmd

import (
	"context"
	"fmt"
	"time"

	"lotto/application"
	"lotto/config"
	"lotto/database"
	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"
	"lotto/domain/numbers"
	"lotto/infrastructure"
	"lotto/infrastructure/observability"
	"lotto/repository"

	log "github.com/sirupsen/logrus"
)

// app holds the wired components shared by the server and the admin commands
type app struct {
	cfg       *config.Config
	rules     entities.GameRules
	db        *database.DB
	eventBus  *events.Bus
	metrics   *observability.MetricsProvider
	scheduler *application.DrawScheduler
	api       *application.LotteryAPI

	closers []func()
}

// newApp connects to every backing service and builds the lottery facade
func newApp(ctx context.Context, cfg *config.Config, clientName string) (*app, error) {
	rules, err := cfg.GameRules()
	if err != nil {
		return nil, fmt.Errorf("invalid game rules: %w", err)
	}

	a := &app{cfg: cfg, rules: rules}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(),
		database.WithMaxConns(cfg.DatabaseMaxConns),
		database.WithStatementTimeout(cfg.DatabaseStatementTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	log.Info("Database connection established successfully")

	a.eventBus = events.NewBus()

	a.metrics = observability.NewMetricsProvider(cfg)
	if err := a.metrics.Initialize(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	a.metrics.Attach(a.eventBus)
	a.closers = append(a.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metrics.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Failed to shut down metrics provider")
		}
	})

	if err := a.connectNATS(ctx, clientName); err != nil {
		a.Close()
		return nil, err
	}

	locker, err := a.connectLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, a.eventBus)
	generator := numbers.NewGenerator()

	a.scheduler = application.NewDrawScheduler(uowFactory, generator, rules, locker, cfg.SchedulerInterval, cfg.SchedulerLeaseTTL)
	a.scheduler.OnTick(func(result *interfaces.SettlementResult, err error) {
		switch {
		case err != nil:
			a.metrics.RecordSchedulerTick(observability.OutcomeFailed)
		case result != nil:
			a.metrics.RecordSchedulerTick(observability.OutcomeSettled)
		default:
			a.metrics.RecordSchedulerTick(observability.OutcomeIdle)
		}
	})

	a.api = application.NewLotteryAPI(uowFactory, generator, rules, a.scheduler)
	return a, nil
}

// connectNATS forwards committed domain events to JetStream when servers are configured
func (a *app) connectNATS(ctx context.Context, clientName string) error {
	if a.cfg.NATSServers == "" {
		log.Info("NATS_SERVERS not set, domain events stay in process")
		return nil
	}

	natsClient := infrastructure.NewNATSClient(a.cfg.NATSServers, clientName)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if !natsClient.IsConnected() {
		natsClient.Close()
		return fmt.Errorf("NATS connection to %s is not ready", a.cfg.NATSServers)
	}
	a.closers = append(a.closers, func() {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Failed to close NATS connection")
		}
	})

	mapper := infrastructure.NewEventSubjectMapper()
	if err := natsClient.EnsureStream(infrastructure.DomainEventStream, mapper.GetAllSubjects()); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(natsClient, mapper, clientName)
	publisher.OnPublished(a.metrics.RecordNATSMessagePublished)
	publisher.Attach(a.eventBus)
	return nil
}

// connectLocker returns the redis lease when an address is configured
func (a *app) connectLocker(ctx context.Context) (application.Locker, error) {
	if a.cfg.RedisAddr == "" {
		return nil, nil
	}

	client, err := infrastructure.NewRedisClient(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Error("Failed to close redis client")
		}
	})
	return infrastructure.NewRedisLocker(client), nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
