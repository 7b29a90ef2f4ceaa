package services

import (
	"context"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// recordBalanceChange appends a ledger transaction and emits the matching balance change event.
// Every balance mutation goes through here so the ledger stays complete.
func recordBalanceChange(
	ctx context.Context,
	transactionRepo interfaces.TransactionRepository,
	eventPublisher interfaces.EventPublisher,
	tx *entities.LedgerTransaction,
) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid ledger transaction: %w", err)
	}

	if err := transactionRepo.Record(ctx, tx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          tx.UserID,
		OldBalance:      tx.BalanceAfter - tx.SignedAmount(),
		NewBalance:      tx.BalanceAfter,
		TransactionType: tx.Type,
		ChangeAmount:    tx.SignedAmount(),
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
