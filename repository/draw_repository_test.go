package repository

import (
	"context"
	"testing"
	"time"

	"lotto/domain/entities"
	"lotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawRepository_SingleOpenDraw(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()
	drawTime := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)

	draw, err := repo.Create(ctx, "DRAW-0001", drawTime, 25)
	require.NoError(t, err)
	assert.Equal(t, entities.DrawStatusScheduled, draw.Status)
	assert.Equal(t, int64(25), draw.JackpotBalance)
	assert.Nil(t, draw.WinningNumbers)
	assert.True(t, drawTime.Equal(draw.DrawTime))

	// A second open draw is refused by the partial unique index
	_, err = repo.Create(ctx, "DRAW-0002", drawTime.Add(time.Hour), 0)
	assert.ErrorIs(t, err, entities.ErrDrawConflict)

	current, err := repo.GetCurrentOpenDraw(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, draw.ID, current.ID)
}

func TestDrawRepository_DuplicateNumberConflicts(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	testutil.InsertDraw(t, testDB.DB, "DRAW-0001", time.Now().UTC().Add(-time.Hour), entities.DrawStatusCompleted)

	_, err := repo.Create(ctx, "DRAW-0001", time.Now().UTC().Add(time.Hour), 0)
	assert.ErrorIs(t, err, entities.ErrDrawConflict)
}

func TestDrawRepository_HighestDrawNumber(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	highest, err := repo.GetHighestDrawNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", highest)

	past := time.Now().UTC().Add(-48 * time.Hour)
	testutil.InsertDraw(t, testDB.DB, "DRAW-0007", past, entities.DrawStatusCompleted)
	testutil.InsertDraw(t, testDB.DB, "DRAW-9999", past, entities.DrawStatusCompleted)
	testutil.InsertDraw(t, testDB.DB, "DRAW-10000", past, entities.DrawStatusCompleted)
	testutil.InsertDraw(t, testDB.DB, "DRAW-0010", past, entities.DrawStatusCompleted)

	highest, err = repo.GetHighestDrawNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "DRAW-10000", highest)

	testDB.Truncate(t)
	highest, err = repo.GetHighestDrawNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", highest)

	restarted := testutil.InsertDraw(t, testDB.DB, "DRAW-0001", past, entities.DrawStatusCompleted)
	assert.Equal(t, int64(1), restarted.ID)
}

func TestDrawRepository_Lifecycle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	draw := testutil.InsertDraw(t, testDB.DB, "DRAW-0001", now.Add(-time.Minute), entities.DrawStatusScheduled)

	t.Run("due draw is found", func(t *testing.T) {
		due, err := repo.GetNextDueDraw(ctx, now)
		require.NoError(t, err)
		require.NotNil(t, due)
		assert.Equal(t, draw.ID, due.ID)

		notYet, err := repo.GetNextDueDraw(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Nil(t, notYet)
	})

	t.Run("aggregates only on scheduled draw", func(t *testing.T) {
		require.NoError(t, repo.AddTicketAggregates(ctx, draw.ID, 1, 15))
		require.NoError(t, repo.AddTicketAggregates(ctx, draw.ID, 1, 15))

		reloaded, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), reloaded.TotalTickets)
		assert.Equal(t, int64(30), reloaded.JackpotBalance)
	})

	t.Run("complete once", func(t *testing.T) {
		require.NoError(t, repo.MarkDrawing(ctx, draw.ID))
		assert.Error(t, repo.AddTicketAggregates(ctx, draw.ID, 1, 15))

		loaded, err := repo.GetByIDForUpdate(ctx, draw.ID)
		require.NoError(t, err)
		loaded.Complete([]int{2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24}, 0, loaded.JackpotBalance, now)
		require.NoError(t, repo.Complete(ctx, loaded))

		err = repo.Complete(ctx, loaded)
		assert.ErrorIs(t, err, entities.ErrDrawAlreadyCompleted)

		completed, err := repo.GetLatestCompleted(ctx)
		require.NoError(t, err)
		require.NotNil(t, completed)
		assert.Equal(t, entities.DrawStatusCompleted, completed.Status)
		assert.Equal(t, []int{2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24}, completed.WinningNumbers)
		assert.Equal(t, int64(30), completed.CarryOver)

		open, err := repo.GetCurrentOpenDraw(ctx)
		require.NoError(t, err)
		assert.Nil(t, open)
	})
}
