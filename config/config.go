package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"lotto/database"
	"lotto/domain/entities"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Database configuration
	DatabaseURL              string        `env:"DATABASE_URL"`
	DatabaseName             string        `env:"DATABASE_NAME"`
	DatabaseMaxConns         int32         `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	DatabaseStatementTimeout time.Duration `env:"DATABASE_STATEMENT_TIMEOUT" envDefault:"30s"`

	// HTTP server configuration
	Port        int      `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AdminToken  string   `env:"ADMIN_TOKEN"`

	// Game rules
	PickCount           int           `env:"PICK_COUNT" envDefault:"12"`
	MaxNumber           int           `env:"MAX_NUMBER" envDefault:"24"`
	TicketPrice         int64         `env:"TICKET_PRICE" envDefault:"50"`
	JackpotContribution int64         `env:"JACKPOT_CONTRIBUTION" envDefault:"15"`
	PurchaseCutoff      time.Duration `env:"PURCHASE_CUTOFF" envDefault:"120s"`
	DrawInterval        time.Duration `env:"DRAW_INTERVAL" envDefault:"1h"`
	StartingBalance     int64         `env:"STARTING_BALANCE" envDefault:"100"`
	PrizeAmounts        []int64       `env:"PRIZE_AMOUNTS" envSeparator:"," envDefault:"100000,10000,1000,200,50"`

	// Scheduler configuration
	SchedulerEnabled  bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"10s"`
	SchedulerLeaseTTL time.Duration `env:"SCHEDULER_LEASE_TTL" envDefault:"30s"`

	// Redis configuration, empty address disables the scheduler lease
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// NATS configuration, empty servers disables event publishing
	NATSServers string `env:"NATS_SERVERS"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelServiceName          string `env:"OTEL_SERVICE_NAME" envDefault:"lotto"`
	OTelExporterType         string `env:"OTEL_EXPORTER_TYPE" envDefault:"console"` // "console", "otlp" or "none"
	OTelOTLPEndpoint         string `env:"OTEL_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelExportIntervalMillis int    `env:"OTEL_EXPORT_INTERVAL_MILLIS" envDefault:"10000"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// GameRules builds and validates the game rules
func (c *Config) GameRules() (entities.GameRules, error) {
	rules := entities.GameRules{
		PickCount:           c.PickCount,
		MaxNumber:           c.MaxNumber,
		TicketPrice:         c.TicketPrice,
		JackpotContribution: c.JackpotContribution,
		PurchaseCutoff:      c.PurchaseCutoff,
		DrawInterval:        c.DrawInterval,
		StartingBalance:     c.StartingBalance,
		Prizes:              entities.PrizeTable{Amounts: append([]int64(nil), c.PrizeAmounts...)},
	}
	if err := rules.Validate(); err != nil {
		return entities.GameRules{}, fmt.Errorf("invalid game rules: %w", err)
	}
	return rules, nil
}

// load loads configuration from the environment and an optional .env file
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.SchedulerInterval <= 0 {
			return nil, fmt.Errorf("SCHEDULER_INTERVAL must be positive")
		}
	}

	return config, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	defaults := entities.DefaultGameRules()
	return &Config{
		Environment:              "test",
		LogLevel:                 "debug",
		DatabaseMaxConns:         4,
		DatabaseStatementTimeout: 5 * time.Second,
		Port:                     8080,
		AdminToken:               "test-admin-token",
		PickCount:                defaults.PickCount,
		MaxNumber:                defaults.MaxNumber,
		TicketPrice:              defaults.TicketPrice,
		JackpotContribution:      defaults.JackpotContribution,
		PurchaseCutoff:           defaults.PurchaseCutoff,
		DrawInterval:             defaults.DrawInterval,
		StartingBalance:          defaults.StartingBalance,
		PrizeAmounts:             defaults.Prizes.Amounts,
		SchedulerInterval:        10 * time.Second,
		SchedulerLeaseTTL:        30 * time.Second,
		OTelServiceName:          "lotto-test",
		OTelExporterType:         "none",
	}
}
