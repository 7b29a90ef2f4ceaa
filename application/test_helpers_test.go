package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"lotto/domain/interfaces"
	"lotto/domain/testhelpers"
)

// fakeUnitOfWork hands out shared repository mocks and records its lifecycle
type fakeUnitOfWork struct {
	factory *fakeUnitOfWorkFactory
	begun   bool
	done    bool
}

func (u *fakeUnitOfWork) Begin(context.Context) error {
	if u.factory.beginErr != nil {
		return u.factory.beginErr
	}
	u.begun = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	if !u.begun || u.done {
		return errors.New("no transaction to commit")
	}
	u.done = true
	u.factory.mu.Lock()
	defer u.factory.mu.Unlock()
	u.factory.commits++
	return u.factory.commitErr
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.begun || u.done {
		return nil
	}
	u.done = true
	u.factory.mu.Lock()
	defer u.factory.mu.Unlock()
	u.factory.rollbacks++
	return nil
}

func (u *fakeUnitOfWork) UserRepository() interfaces.UserRepository { return u.factory.UserRepo }
func (u *fakeUnitOfWork) DrawRepository() interfaces.DrawRepository { return u.factory.DrawRepo }
func (u *fakeUnitOfWork) TicketRepository() interfaces.TicketRepository {
	return u.factory.TicketRepo
}
func (u *fakeUnitOfWork) TransactionRepository() interfaces.TransactionRepository {
	return u.factory.TransactionRepo
}
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher { return u.factory.Publisher }

type fakeUnitOfWorkFactory struct {
	UserRepo        *testhelpers.MockUserRepository
	DrawRepo        *testhelpers.MockDrawRepository
	TicketRepo      *testhelpers.MockTicketRepository
	TransactionRepo *testhelpers.MockTransactionRepository
	Publisher       *testhelpers.MockEventPublisher
	Generator       *testhelpers.MockGenerator

	beginErr  error
	commitErr error

	mu        sync.Mutex
	commits   int
	rollbacks int
}

func newFakeUnitOfWorkFactory() *fakeUnitOfWorkFactory {
	return &fakeUnitOfWorkFactory{
		UserRepo:        new(testhelpers.MockUserRepository),
		DrawRepo:        new(testhelpers.MockDrawRepository),
		TicketRepo:      new(testhelpers.MockTicketRepository),
		TransactionRepo: new(testhelpers.MockTransactionRepository),
		Publisher:       new(testhelpers.MockEventPublisher),
		Generator:       new(testhelpers.MockGenerator),
	}
}

func (f *fakeUnitOfWorkFactory) Create() UnitOfWork {
	return &fakeUnitOfWork{factory: f}
}

func (f *fakeUnitOfWorkFactory) counts() (commits, rollbacks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits, f.rollbacks
}

// fakeLocker grants or refuses the lease and counts releases
type fakeLocker struct {
	acquired bool
	err      error

	mu       sync.Mutex
	keys     []string
	releases int
}

func (l *fakeLocker) TryAcquire(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	if l.err != nil || !l.acquired {
		return nil, false, l.err
	}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.releases++
	}, true, nil
}
