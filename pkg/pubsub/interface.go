package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is a message published to the notification bus.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	ActorID   string          `json:"actor_id"`
	TargetID  string          `json:"target_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent creates an event stamped with a fresh id and the current time.
// A nil payload is omitted.
func NewEvent(eventType, actorID, targetID string, payload interface{}) (*Event, error) {
	e := &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		TargetID:  targetID,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		e.Payload = data
	}
	return e, nil
}

// UnmarshalPayload unmarshals the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Publisher publishes events to the bus.
type Publisher interface {
	Publish(ctx context.Context, channel string, event *Event) error
	Close() error
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *Event) error { return nil }
func (NopPublisher) Close() error                                  { return nil }
