package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"lotto/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAPI(f *fakeUnitOfWorkFactory) *LotteryAPI {
	return NewLotteryAPI(f, f.Generator, entities.DefaultGameRules(), newTestScheduler(f, NoopLocker{}))
}

func TestLotteryAPI_CommitsOnSuccess(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	f.UserRepo.On("GetByID", mock.Anything, int64(5)).Return(&entities.User{ID: 5, Balance: 100}, nil)

	user, err := newTestAPI(f).GetUser(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, int64(100), user.Balance)
	commits, rollbacks := f.counts()
	assert.Equal(t, 1, commits)
	assert.Equal(t, 0, rollbacks)
}

func TestLotteryAPI_RollsBackOnFailure(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	open := &entities.Draw{
		ID:         1,
		DrawNumber: "DRAW-0001",
		DrawTime:   time.Now().UTC().Add(time.Hour),
		Status:     entities.DrawStatusScheduled,
	}
	f.DrawRepo.On("GetCurrentOpenDraw", mock.Anything).Return(open, nil)
	f.DrawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(open, nil)
	f.UserRepo.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(&entities.User{ID: 5, Balance: 10}, nil)

	selection := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	result, err := newTestAPI(f).Purchase(context.Background(), 5, selection)

	assert.Nil(t, result)
	var fundsErr *entities.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, int64(10), fundsErr.Balance)
	assert.Equal(t, int64(50), fundsErr.Price)

	commits, rollbacks := f.counts()
	assert.Equal(t, 0, commits)
	assert.Equal(t, 1, rollbacks)
	f.UserRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestLotteryAPI_StoreErrors(t *testing.T) {
	t.Parallel()

	t.Run("begin", func(t *testing.T) {
		t.Parallel()

		f := newFakeUnitOfWorkFactory()
		f.beginErr = &entities.StoreError{Op: "begin", Err: errors.New("connection refused")}

		_, err := newTestAPI(f).GetCurrentDraw(context.Background())

		var storeErr *entities.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "begin", storeErr.Op)
	})

	t.Run("commit", func(t *testing.T) {
		t.Parallel()

		f := newFakeUnitOfWorkFactory()
		f.commitErr = &entities.StoreError{Op: "commit", Err: errors.New("serialization failure")}
		f.UserRepo.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(&entities.User{ID: 5, Balance: 0}, nil)
		f.UserRepo.On("AdjustBalance", mock.Anything, int64(5), int64(25)).Return(int64(25), nil)
		f.TransactionRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
		f.Publisher.On("Publish", mock.Anything).Return(nil)

		_, err := newTestAPI(f).Deposit(context.Background(), 5, 25)

		var storeErr *entities.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "commit", storeErr.Op)
	})
}

func TestLotteryAPI_QuickPick(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	picked := []int{2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24}
	f.Generator.On("Generate", 12, 24).Return(picked, nil)

	numbers, err := newTestAPI(f).QuickPick()

	require.NoError(t, err)
	assert.Equal(t, picked, numbers)
	commits, rollbacks := f.counts()
	assert.Zero(t, commits+rollbacks, "quick pick never opens a unit of work")
}
