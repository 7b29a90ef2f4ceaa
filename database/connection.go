package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// Option adjusts the pool configuration before it is opened
type Option func(*pgxpool.Config)

// WithStatementTimeout aborts any statement running longer than d. Zero leaves the server default.
func WithStatementTimeout(d time.Duration) Option {
	return func(config *pgxpool.Config) {
		if d > 0 {
			config.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(d.Milliseconds(), 10)
		}
	}
}

// WithMaxConns caps the pool size. Zero keeps the pgxpool default.
func WithMaxConns(n int32) Option {
	return func(config *pgxpool.Config) {
		if n > 0 {
			config.MaxConns = n
		}
	}
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	// Parse config to set timezone
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Draw times are compared against UTC clocks
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	for _, opt := range opts {
		opt(config)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
