package infrastructure

import (
	"testing"

	"lotto/domain/events"

	"github.com/stretchr/testify/assert"
)

func TestEventSubjectMapper_MapEventToSubject(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.TicketPurchasedEvent{}, "lotto.tickets.purchased"},
		{events.PrizeClaimedEvent{}, "lotto.tickets.claimed"},
		{events.DrawCreatedEvent{}, "lotto.draws.created"},
		{events.DrawSettledEvent{}, "lotto.draws.settled"},
		{events.BalanceChangeEvent{}, "lotto.users.balance_changed"},
		{events.UserCreatedEvent{}, "lotto.users.created"},
		{typedEvent("mystery"), "lotto.unknown.mystery"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
		})
	}
}

func TestEventSubjectMapper_GetAllSubjects(t *testing.T) {
	subjects := NewEventSubjectMapper().GetAllSubjects()

	assert.Len(t, subjects, len(events.AllEventTypes))
	for _, subject := range subjects {
		assert.NotContains(t, subject, "unknown")
	}
}
