package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrDrawAlreadyCompleted is returned when settlement is requested for a draw that was already settled
	ErrDrawAlreadyCompleted = errors.New("draw already completed")

	// ErrTicketNotClaimable is returned when claiming a ticket that did not win
	ErrTicketNotClaimable = errors.New("ticket is not claimable")

	// ErrTicketAlreadySettled is returned when scoring a ticket that already left the active state
	ErrTicketAlreadySettled = errors.New("ticket already settled")

	// ErrDrawConflict is returned when a draw insert loses to an existing open draw or draw number
	ErrDrawConflict = errors.New("draw already exists")
)

// ValidationError is a user-correctable problem with the request. Nothing was mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientFundsError discloses the current balance and the required price
type InsufficientFundsError struct {
	Balance int64
	Price   int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Balance, e.Price)
}

// PurchaseWindowClosedError is returned inside the cutoff before a draw's reveal
type PurchaseWindowClosedError struct {
	DrawID           int64
	SecondsRemaining int64
}

func (e *PurchaseWindowClosedError) Error() string {
	return fmt.Sprintf("purchase window closed for draw %d: %d seconds until draw", e.DrawID, e.SecondsRemaining)
}

// NotFoundError is returned for unknown users, tickets and draws
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFoundError creates a not found error for a resource
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// StoreError wraps connectivity and transaction failures. The unit of work was rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err is caused by the caller rather than the system
func IsUserError(err error) bool {
	var validationErr *ValidationError
	var fundsErr *InsufficientFundsError
	var windowErr *PurchaseWindowClosedError
	var notFoundErr *NotFoundError
	return errors.As(err, &validationErr) ||
		errors.As(err, &fundsErr) ||
		errors.As(err, &windowErr) ||
		errors.As(err, &notFoundErr) ||
		errors.Is(err, ErrTicketNotClaimable)
}
