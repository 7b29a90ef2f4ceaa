package application

import (
	"context"

	"lotto/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases events raised inside it
	Commit() error

	// Rollback rolls back the transaction and drops its events. It is a no-op after Commit.
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	DrawRepository() interfaces.DrawRepository
	TicketRepository() interfaces.TicketRepository
	TransactionRepository() interfaces.TransactionRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
