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

func TestTicketRepository_CreateAndSettle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTicketRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.InsertUser(t, testDB.DB, 1, 100)
	draw := testutil.InsertDraw(t, testDB.DB, "DRAW-0001", time.Now().UTC().Add(time.Hour), entities.DrawStatusScheduled)

	first := testutil.NewTicket(user.ID, draw.ID, "t-1", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	second := testutil.NewTicket(user.ID, draw.ID, "t-2", []int{13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24})
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotZero(t, first.ID)
	assert.False(t, first.PurchasedAt.IsZero())

	t.Run("duplicate ticket number is rejected", func(t *testing.T) {
		dup := testutil.NewTicket(user.ID, draw.ID, "t-1", first.Numbers)
		assert.Error(t, repo.Create(ctx, dup))
	})

	t.Run("numbers round trip", func(t *testing.T) {
		loaded, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Numbers, loaded.Numbers)
		assert.Equal(t, entities.TicketStatusActive, loaded.Status)
		assert.Empty(t, loaded.MatchedNumbers)
		assert.Nil(t, loaded.SettledAt)
	})

	t.Run("settle active tickets once", func(t *testing.T) {
		active, err := repo.GetActiveByDrawForUpdate(ctx, draw.ID)
		require.NoError(t, err)
		require.Len(t, active, 2)

		winning := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 13}
		for _, ticket := range active {
			require.NoError(t, ticket.Score(winning, entities.DefaultPrizeTable(), time.Now().UTC()))
			require.NoError(t, repo.UpdateSettlement(ctx, ticket))
		}

		settled, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TicketStatusWon, settled.Status)
		assert.Equal(t, 11, settled.MatchedCount)
		assert.Equal(t, int64(10000), settled.WinAmount)
		assert.NotNil(t, settled.SettledAt)

		remaining, err := repo.GetActiveByDrawForUpdate(ctx, draw.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		assert.Error(t, repo.UpdateSettlement(ctx, settled))
	})

	t.Run("claim is single-shot and owner only", func(t *testing.T) {
		claimed, err := repo.MarkClaimed(ctx, first.ID, user.ID+1)
		require.NoError(t, err)
		assert.False(t, claimed)

		claimed, err = repo.MarkClaimed(ctx, first.ID, user.ID)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = repo.MarkClaimed(ctx, first.ID, user.ID)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("listing and counts", func(t *testing.T) {
		tickets, err := repo.ListByUser(ctx, user.ID, 1, 0)
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, second.ID, tickets[0].ID)

		counts, err := repo.CountByUserAndStatus(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[entities.TicketStatusClaimed])
		assert.Equal(t, int64(1), counts[entities.TicketStatusWon]+counts[entities.TicketStatusLost])
	})
}

func TestTransactionRepository_RecordAndList(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()
	user := testutil.InsertUser(t, testDB.DB, 1, 100)

	deposit := &entities.LedgerTransaction{
		UserID:       user.ID,
		Type:         entities.TransactionTypeDeposit,
		Amount:       100,
		BalanceAfter: 100,
	}
	require.NoError(t, repo.Record(ctx, deposit))
	assert.NotZero(t, deposit.ID)

	purchase := &entities.LedgerTransaction{
		UserID:       user.ID,
		Type:         entities.TransactionTypeTicketPurchase,
		Amount:       50,
		BalanceAfter: 50,
		Metadata:     map[string]any{"draw_number": "DRAW-0001"},
	}
	require.NoError(t, repo.Record(ctx, purchase))

	history, err := repo.GetByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entities.TransactionTypeTicketPurchase, history[0].Type)
	assert.Equal(t, "DRAW-0001", history[0].Metadata["draw_number"])
	assert.Equal(t, int64(-50), history[0].SignedAmount())
}
