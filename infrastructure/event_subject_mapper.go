package infrastructure

import (
	"fmt"

	"lotto/domain/events"
)

// DomainEventStream is the JetStream stream holding every lottery event
const DomainEventStream = "lotto_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "lotto.users.balance_changed"
	case events.EventTypeUserCreated:
		return "lotto.users.created"
	case events.EventTypeTicketPurchased:
		return "lotto.tickets.purchased"
	case events.EventTypePrizeClaimed:
		return "lotto.tickets.claimed"
	case events.EventTypeDrawCreated:
		return "lotto.draws.created"
	case events.EventTypeDrawSettled:
		return "lotto.draws.settled"
	default:
		return fmt.Sprintf("lotto.unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	subjects := make([]string, 0, len(events.AllEventTypes))
	for _, eventType := range events.AllEventTypes {
		subjects = append(subjects, m.MapEventToSubject(typedEvent(eventType)))
	}
	return subjects
}

// typedEvent is a payload-free event used for subject lookups
type typedEvent events.EventType

func (e typedEvent) Type() events.EventType {
	return events.EventType(e)
}
