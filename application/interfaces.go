package application

import (
	"context"
	"errors"
	"time"
)

// ErrSchedulerBusy is returned when another scheduler instance holds the leader lease
var ErrSchedulerBusy = errors.New("draw scheduler is busy")

// Locker grants a short-lived exclusive lease so that only one scheduler
// instance settles draws at a time
type Locker interface {
	// TryAcquire returns acquired=false without error when the lease is held elsewhere.
	// release must be called once the work protected by the lease is finished.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// NoopLocker always grants the lease. Used for single-instance deployments.
type NoopLocker struct{}

func (NoopLocker) TryAcquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
