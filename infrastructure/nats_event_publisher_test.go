package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"lotto/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

// recordingPublisher captures messages instead of sending them
type recordingPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{subject: subject, data: data})
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func TestNATSEventPublisher_Envelope(t *testing.T) {
	recorder := &recordingPublisher{}
	publisher := NewNATSEventPublisher(recorder, NewEventSubjectMapper(), "lotto-test")

	var published []events.EventType
	publisher.OnPublished(func(eventType events.EventType) {
		published = append(published, eventType)
	})

	err := publisher.Publish(events.DrawSettledEvent{
		DrawID:         3,
		DrawNumber:     "DRAW-0003",
		WinningNumbers: []int{1, 2, 3},
		TotalPaid:      1200,
	})
	require.NoError(t, err)
	require.Len(t, recorder.messages, 1)

	msg := recorder.messages[0]
	assert.Equal(t, "lotto.draws.settled", msg.subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.data, &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.Equal(t, "draw_settled", envelope.EventType)
	assert.Equal(t, "lotto-test", envelope.SourceService)
	assert.False(t, envelope.Timestamp.IsZero())

	var payload events.DrawSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "DRAW-0003", payload.DrawNumber)
	assert.Equal(t, int64(1200), payload.TotalPaid)

	assert.Equal(t, []events.EventType{events.EventTypeDrawSettled}, published)
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	recorder := &recordingPublisher{err: errors.New("stream not found")}
	publisher := NewNATSEventPublisher(recorder, NewEventSubjectMapper(), "lotto-test")

	err := publisher.Publish(events.UserCreatedEvent{UserID: 1})
	assert.ErrorContains(t, err, "failed to publish event to NATS")
}

func TestNATSEventPublisher_AttachForwardsCommittedEvents(t *testing.T) {
	recorder := &recordingPublisher{}
	publisher := NewNATSEventPublisher(recorder, NewEventSubjectMapper(), "lotto-test")

	bus := events.NewBus()
	publisher.Attach(bus)

	pending := events.NewTransactionalBus(bus)
	require.NoError(t, pending.Publish(events.TicketPurchasedEvent{TicketID: 1}))
	pending.Discard()
	require.NoError(t, pending.Publish(events.TicketPurchasedEvent{TicketID: 2}))
	pending.Flush(context.Background())

	assert.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, recorder.count())
}
