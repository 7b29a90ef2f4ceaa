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

var schedulerNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestScheduler(f *fakeUnitOfWorkFactory, locker Locker) *DrawScheduler {
	s := NewDrawScheduler(f, f.Generator, entities.DefaultGameRules(), locker, 10*time.Second, 30*time.Second)
	s.now = func() time.Time { return schedulerNow }
	return s
}

func dueDraw(id int64) *entities.Draw {
	return &entities.Draw{
		ID:             id,
		DrawNumber:     entities.FormatDrawNumber(id),
		DrawTime:       schedulerNow.Add(-time.Second),
		Status:         entities.DrawStatusScheduled,
		JackpotBalance: 15,
		TotalTickets:   1,
	}
}

func TestDrawScheduler_Tick_SkipsWithoutLease(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	locker := &fakeLocker{acquired: false}

	result, err := newTestScheduler(f, locker).Tick(context.Background())

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{SchedulerLeaseKey}, locker.keys)
	f.DrawRepo.AssertNotCalled(t, "GetNextDueDraw", mock.Anything, mock.Anything)
}

func TestDrawScheduler_Tick_LeaseError(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	locker := &fakeLocker{err: errors.New("redis down")}

	_, err := newTestScheduler(f, locker).Tick(context.Background())

	assert.ErrorContains(t, err, "failed to acquire scheduler lease")
}

func TestDrawScheduler_Tick_NothingDue(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	locker := &fakeLocker{acquired: true}
	open := dueDraw(4)
	open.DrawTime = schedulerNow.Add(time.Hour)

	f.DrawRepo.On("GetNextDueDraw", mock.Anything, schedulerNow).Return(nil, nil)
	f.DrawRepo.On("GetCurrentOpenDraw", mock.Anything).Return(open, nil)

	result, err := newTestScheduler(f, locker).Tick(context.Background())

	require.NoError(t, err)
	assert.Nil(t, result)
	f.DrawRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.Generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	assert.Equal(t, 1, locker.releases)
	f.DrawRepo.AssertExpectations(t)
}

func TestDrawScheduler_Tick_SettlesOneDrawAndCreatesSuccessor(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	locker := &fakeLocker{acquired: true}
	due := dueDraw(1)

	f.DrawRepo.On("GetNextDueDraw", mock.Anything, schedulerNow).Return(due, nil).Once()
	f.DrawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(due, nil)
	f.DrawRepo.On("MarkDrawing", mock.Anything, int64(1)).Return(nil)
	f.Generator.On("Generate", 12, 24).Return([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, nil)
	f.TicketRepo.On("GetActiveByDrawForUpdate", mock.Anything, int64(1)).Return([]*entities.Ticket{}, nil)
	f.DrawRepo.On("Complete", mock.Anything, mock.MatchedBy(func(d *entities.Draw) bool {
		return d.ID == 1 && d.CarryOver == 15
	})).Return(nil)
	f.Publisher.On("Publish", mock.AnythingOfType("events.DrawSettledEvent")).Return(nil)

	completed := dueDraw(1)
	completed.Status = entities.DrawStatusCompleted
	completed.CarryOver = 15
	f.DrawRepo.On("GetCurrentOpenDraw", mock.Anything).Return(nil, nil)
	f.DrawRepo.On("GetHighestDrawNumber", mock.Anything).Return("DRAW-0001", nil)
	f.DrawRepo.On("GetLatestCompleted", mock.Anything).Return(completed, nil)
	f.DrawRepo.On("Create", mock.Anything, "DRAW-0002", mock.AnythingOfType("time.Time"), int64(15)).
		Return(&entities.Draw{ID: 2, DrawNumber: "DRAW-0002", Status: entities.DrawStatusScheduled, JackpotBalance: 15}, nil)
	f.Publisher.On("Publish", mock.AnythingOfType("events.DrawCreatedEvent")).Return(nil)

	result, err := newTestScheduler(f, locker).Tick(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "DRAW-0001", result.DrawNumber)
	assert.Equal(t, int64(15), result.CarryOver)

	commits, _ := f.counts()
	assert.Equal(t, 2, commits, "settlement and successor creation commit separately")
	assert.Equal(t, 1, locker.releases)
	f.DrawRepo.AssertExpectations(t)
	f.Publisher.AssertExpectations(t)
}

func TestDrawScheduler_Tick_SettlementFailureRollsBack(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	locker := &fakeLocker{acquired: true}
	due := dueDraw(3)

	f.DrawRepo.On("GetNextDueDraw", mock.Anything, schedulerNow).Return(due, nil)
	f.DrawRepo.On("GetByIDForUpdate", mock.Anything, int64(3)).Return(due, nil)
	f.DrawRepo.On("MarkDrawing", mock.Anything, int64(3)).Return(nil)
	f.Generator.On("Generate", 12, 24).Return(nil, errors.New("entropy unavailable"))

	result, err := newTestScheduler(f, locker).Tick(context.Background())

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "failed to settle draw DRAW-0003")
	commits, rollbacks := f.counts()
	assert.Equal(t, 0, commits)
	assert.Equal(t, 2, rollbacks)
	assert.Equal(t, 1, locker.releases)
	f.DrawRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDrawScheduler_TriggerDraw(t *testing.T) {
	t.Parallel()

	t.Run("busy", func(t *testing.T) {
		t.Parallel()

		f := newFakeUnitOfWorkFactory()
		_, err := newTestScheduler(f, &fakeLocker{acquired: false}).TriggerDraw(context.Background())
		assert.ErrorIs(t, err, ErrSchedulerBusy)
	})

	t.Run("no open draw", func(t *testing.T) {
		t.Parallel()

		f := newFakeUnitOfWorkFactory()
		f.DrawRepo.On("GetCurrentOpenDraw", mock.Anything).Return(nil, nil)

		_, err := newTestScheduler(f, &fakeLocker{acquired: true}).TriggerDraw(context.Background())
		var notFound *entities.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("settles a draw before its time", func(t *testing.T) {
		t.Parallel()

		f := newFakeUnitOfWorkFactory()
		open := dueDraw(6)
		open.DrawTime = schedulerNow.Add(time.Hour)
		next := &entities.Draw{ID: 7, DrawNumber: "DRAW-0007", Status: entities.DrawStatusScheduled}

		f.DrawRepo.On("GetCurrentOpenDraw", mock.Anything).Return(open, nil).Once()
		f.DrawRepo.On("GetByIDForUpdate", mock.Anything, int64(6)).Return(open, nil)
		f.DrawRepo.On("MarkDrawing", mock.Anything, int64(6)).Return(nil)
		f.Generator.On("Generate", 12, 24).Return([]int{13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24}, nil)
		f.TicketRepo.On("GetActiveByDrawForUpdate", mock.Anything, int64(6)).Return([]*entities.Ticket{}, nil)
		f.DrawRepo.On("Complete", mock.Anything, mock.Anything).Return(nil)
		f.Publisher.On("Publish", mock.Anything).Return(nil)
		f.DrawRepo.On("GetCurrentOpenDraw", mock.Anything).Return(next, nil).Once()

		result, err := newTestScheduler(f, &fakeLocker{acquired: true}).TriggerDraw(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(6), result.DrawID)
		f.DrawRepo.AssertExpectations(t)
	})
}

func TestDrawScheduler_StartStop(t *testing.T) {
	t.Parallel()

	f := newFakeUnitOfWorkFactory()
	locker := &fakeLocker{acquired: false}
	s := newTestScheduler(f, locker)
	s.interval = 5 * time.Millisecond

	stop := s.Start(context.Background())

	assert.Eventually(t, func() bool {
		locker.mu.Lock()
		defer locker.mu.Unlock()
		return len(locker.keys) >= 2
	}, time.Second, 5*time.Millisecond)

	stop()
	stop()
}
