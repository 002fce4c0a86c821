// Package events publishes academy domain events to kafka.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TopicUsers       = "user_events"
	TopicClasses     = "class_events"
	TopicEnrollments = "enrollment_events"
	TopicFeedback    = "feedback_events"
)

const (
	UserCreated        = "user_created"
	UserRoleChanged    = "user_role_changed"
	UserDeleted        = "user_deleted"
	ClassCreated       = "class_created"
	ClassUpdated       = "class_updated"
	ClassStatusChanged = "class_status_changed"
	ClassSelected      = "class_selected"
	SelectionRemoved   = "selection_removed"
	FeedbackSubmitted  = "feedback_submitted"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   string    `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

func New(eventType, entityID string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, ev Event) error
	Close() error
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }
func (Nop) Close() error                                         { return nil }
