package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lotto/config"
	"lotto/domain/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the lottery
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	ticketsPurchasedCounter    metric.Int64Counter
	ticketStakeCounter         metric.Int64Counter
	prizesClaimedCounter       metric.Int64Counter
	drawsSettledCounter        metric.Int64Counter
	prizesPaidCounter          metric.Int64Counter
	balanceTransactionsCounter metric.Int64Counter
	usersCreatedCounter        metric.Int64Counter
	natsPublishedCounter       metric.Int64Counter
	schedulerTicksCounter      metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.markInitialized(false)
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.markInitialized(false)
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	return mp.initializeWithReader(reader)
}

// initializeWithReader builds the meter provider around reader
func (mp *MetricsProvider) initializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("lotto")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) markInitialized(enabled bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.initialized = true
	mp.enabled = enabled
}

func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&mp.ticketsPurchasedCounter, TicketsPurchasedTotal, "Total number of tickets purchased", "1"},
		{&mp.ticketStakeCounter, TicketStakeTotal, "Total amount spent on tickets", "{credit}"},
		{&mp.prizesClaimedCounter, PrizesClaimedTotal, "Total number of prizes claimed", "1"},
		{&mp.drawsSettledCounter, DrawsSettledTotal, "Total number of settled draws", "1"},
		{&mp.prizesPaidCounter, PrizesPaidTotal, "Total amount credited to winners", "{credit}"},
		{&mp.balanceTransactionsCounter, BalanceTransactionsTotal, "Total number of balance transactions", "1"},
		{&mp.usersCreatedCounter, UsersCreatedTotal, "Total number of provisioned users", "1"},
		{&mp.natsPublishedCounter, NATSMessagesPublished, "Total number of NATS messages published", "1"},
		{&mp.schedulerTicksCounter, SchedulerTicksTotal, "Total number of draw scheduler ticks", "1"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit(c.unit))
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
	}
	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Attach records committed domain events from bus
func (mp *MetricsProvider) Attach(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		mp.RecordEvent(ctx, event)
	})
}

// RecordEvent updates the counters affected by event
func (mp *MetricsProvider) RecordEvent(ctx context.Context, event events.Event) {
	if !mp.isEnabled() {
		return
	}

	switch e := event.(type) {
	case events.TicketPurchasedEvent:
		mp.ticketsPurchasedCounter.Add(ctx, 1)
		mp.ticketStakeCounter.Add(ctx, e.Price)
	case events.PrizeClaimedEvent:
		mp.prizesClaimedCounter.Add(ctx, 1)
	case events.DrawSettledEvent:
		mp.drawsSettledCounter.Add(ctx, 1)
		mp.prizesPaidCounter.Add(ctx, e.TotalPaid)
	case events.BalanceChangeEvent:
		mp.balanceTransactionsCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String(LabelType, string(e.TransactionType))),
		)
	case events.UserCreatedEvent:
		mp.usersCreatedCounter.Add(ctx, 1)
	}
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType events.EventType) {
	if !mp.isEnabled() {
		return
	}

	mp.natsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, string(eventType))),
	)
}

// RecordSchedulerTick records the outcome of one scheduler tick
func (mp *MetricsProvider) RecordSchedulerTick(outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.schedulerTicksCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOutcome, outcome)),
	)
}

func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
