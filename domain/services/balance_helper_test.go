package services

import (
	"context"
	"errors"
	"testing"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordBalanceChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tx        *entities.LedgerTransaction
		wantEvent events.BalanceChangeEvent
	}{
		{
			name: "purchase debits",
			tx: &entities.LedgerTransaction{
				UserID:       5,
				Type:         entities.TransactionTypeTicketPurchase,
				Amount:       50,
				BalanceAfter: 50,
			},
			wantEvent: events.BalanceChangeEvent{
				UserID:          5,
				OldBalance:      100,
				NewBalance:      50,
				TransactionType: entities.TransactionTypeTicketPurchase,
				ChangeAmount:    -50,
			},
		},
		{
			name: "win credits",
			tx: &entities.LedgerTransaction{
				UserID:       5,
				Type:         entities.TransactionTypeWin,
				Amount:       10000,
				BalanceAfter: 10050,
			},
			wantEvent: events.BalanceChangeEvent{
				UserID:          5,
				OldBalance:      50,
				NewBalance:      10050,
				TransactionType: entities.TransactionTypeWin,
				ChangeAmount:    10000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			transactionRepo := new(testhelpers.MockTransactionRepository)
			eventPublisher := new(testhelpers.MockEventPublisher)
			transactionRepo.On("Record", ctx, tt.tx).Return(nil)
			eventPublisher.On("Publish", tt.wantEvent).Return(nil)

			err := recordBalanceChange(ctx, transactionRepo, eventPublisher, tt.tx)
			require.NoError(t, err)

			transactionRepo.AssertExpectations(t)
			eventPublisher.AssertExpectations(t)
		})
	}
}

func TestRecordBalanceChange_InvalidTransaction(t *testing.T) {
	t.Parallel()

	transactionRepo := new(testhelpers.MockTransactionRepository)
	eventPublisher := new(testhelpers.MockEventPublisher)

	err := recordBalanceChange(context.Background(), transactionRepo, eventPublisher, &entities.LedgerTransaction{
		UserID:       5,
		Type:         entities.TransactionTypeWin,
		Amount:       0,
		BalanceAfter: 10,
	})

	assert.ErrorContains(t, err, "invalid ledger transaction")
	transactionRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	eventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestRecordBalanceChange_RecordFailureSkipsEvent(t *testing.T) {
	t.Parallel()

	transactionRepo := new(testhelpers.MockTransactionRepository)
	eventPublisher := new(testhelpers.MockEventPublisher)
	transactionRepo.On("Record", mock.Anything, mock.Anything).Return(errors.New("foreign key violation"))

	err := recordBalanceChange(context.Background(), transactionRepo, eventPublisher, &entities.LedgerTransaction{
		UserID:       5,
		Type:         entities.TransactionTypeDeposit,
		Amount:       100,
		BalanceAfter: 100,
	})

	assert.ErrorContains(t, err, "failed to record transaction")
	eventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestRecordBalanceChange_PublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	transactionRepo := new(testhelpers.MockTransactionRepository)
	eventPublisher := new(testhelpers.MockEventPublisher)
	transactionRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	eventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(errors.New("bus closed"))

	err := recordBalanceChange(context.Background(), transactionRepo, eventPublisher, &entities.LedgerTransaction{
		UserID:       5,
		Type:         entities.TransactionTypeDeposit,
		Amount:       100,
		BalanceAfter: 100,
	})

	assert.NoError(t, err)
	transactionRepo.AssertExpectations(t)
}
