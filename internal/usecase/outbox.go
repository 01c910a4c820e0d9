package usecase

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// eventEnvelope — формат сообщения, которое уходит в Kafka.
type eventEnvelope struct {
	EventID    uuid.UUID       `json:"event_id"`
	EventType  OutboxEventType `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       any             `json:"data"`
}

// NewOutboxEvent упаковывает данные события в конверт и готовит запись outbox в статусе pending.
func NewOutboxEvent(eventType OutboxEventType, aggregateID string, data any) (*OutboxEvent, error) {
	now := time.Now().UTC()
	eventID := uuid.New()

	payload, err := json.Marshal(eventEnvelope{
		EventID:    eventID,
		EventType:  eventType,
		OccurredAt: now,
		Data:       data,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   now,
	}, nil
}
