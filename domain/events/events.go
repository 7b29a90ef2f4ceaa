package events

import (
	"context"
	"sync"

	"lotto/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeUserCreated     EventType = "user_created"
	EventTypeTicketPurchased EventType = "ticket_purchased"
	EventTypeDrawCreated     EventType = "draw_created"
	EventTypeDrawSettled     EventType = "draw_settled"
	EventTypePrizeClaimed    EventType = "prize_claimed"
)

// AllEventTypes lists every event type the lottery emits
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeUserCreated,
	EventTypeTicketPurchased,
	EventTypeDrawCreated,
	EventTypeDrawSettled,
	EventTypePrizeClaimed,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                    `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new account on first contact
type UserCreatedEvent struct {
	UserID         int64  `json:"user_id"`
	ExternalID     int64  `json:"external_id"`
	Username       string `json:"username"`
	InitialBalance int64  `json:"initial_balance"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// TicketPurchasedEvent represents a committed ticket purchase
type TicketPurchasedEvent struct {
	TicketID     int64  `json:"ticket_id"`
	TicketNumber string `json:"ticket_number"`
	UserID       int64  `json:"user_id"`
	DrawID       int64  `json:"draw_id"`
	Numbers      []int  `json:"numbers"`
	Price        int64  `json:"price"`
}

func (e TicketPurchasedEvent) Type() EventType {
	return EventTypeTicketPurchased
}

// DrawCreatedEvent represents a newly scheduled draw
type DrawCreatedEvent struct {
	DrawID         int64  `json:"draw_id"`
	DrawNumber     string `json:"draw_number"`
	DrawTime       int64  `json:"draw_time"` // unix seconds
	JackpotBalance int64  `json:"jackpot_balance"`
}

func (e DrawCreatedEvent) Type() EventType {
	return EventTypeDrawCreated
}

// DrawSettledEvent represents a completed settlement
type DrawSettledEvent struct {
	DrawID         int64  `json:"draw_id"`
	DrawNumber     string `json:"draw_number"`
	WinningNumbers []int  `json:"winning_numbers"`
	TicketsScored  int    `json:"tickets_scored"`
	WinnerCount    int    `json:"winner_count"`
	TotalPaid      int64  `json:"total_paid"`
	CarryOver      int64  `json:"carry_over"`
}

func (e DrawSettledEvent) Type() EventType {
	return EventTypeDrawSettled
}

// PrizeClaimedEvent represents a won ticket moving to claimed
type PrizeClaimedEvent struct {
	TicketID  int64 `json:"ticket_id"`
	UserID    int64 `json:"user_id"`
	WinAmount int64 `json:"win_amount"`
}

func (e PrizeClaimedEvent) Type() EventType {
	return EventTypePrizeClaimed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Publish emits the event immediately
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow subscriber never holds up the caller
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus flushing to real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes the event until Flush
func (b *TransactionalBus) Publish(e Event) error {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
	return nil
}

// Pending returns the number of events waiting for commit
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events from transactional bus")

	// Handlers outlive the request, so they must not inherit its cancellation
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		if b.real != nil {
			b.real.Emit(eventCtx, ev)
		}
	}
	b.pending = nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	if len(b.pending) > 0 {
		log.WithField("discardedEventCount", len(b.pending)).Debug("Discarding pending events from transactional bus")
	}
	b.pending = nil
}
