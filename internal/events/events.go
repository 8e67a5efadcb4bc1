// Package events publishes recruitment domain events to downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/telemetry"
)

// Event types.
const (
	ApplicationCreated       = "application.created"
	ApplicationStatusChanged = "application.status_changed"
	ApplicationDeleted       = "application.deleted"
	ApplicationScreened      = "application.screened"
	InterviewScheduled       = "interview.scheduled"
	InterviewStatusChanged   = "interview.status_changed"
	InterviewRescheduled     = "interview.rescheduled"
	InterviewDeleted         = "interview.deleted"
	JobStatusChanged         = "job.status_changed"
)

// Event is a single domain fact.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	EntityID   string         `json:"entityId"`
	ActorID    string         `json:"actorId,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// New builds an event stamped with a fresh id and the current time.
func New(eventType, entityID, actorID string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		ActorID:    actorID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Emit publishes evt and never fails the caller: errors are logged and counted.
func Emit(ctx context.Context, pub Publisher, evt Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, evt); err != nil {
		metrics.IncEventPublishFailed()
		telemetry.Warn("events.publish_failed", map[string]any{
			"event_type": evt.Type,
			"entity_id":  evt.EntityID,
			"error":      err.Error(),
		})
	}
}

// LogPublisher writes events to the structured log.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	telemetry.Info("event", map[string]any{
		"event_id":   evt.ID,
		"event_type": evt.Type,
		"entity_id":  evt.EntityID,
		"actor_id":   evt.ActorID,
		"data":       evt.Data,
	})
	return nil
}

func (LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(ctx context.Context, evt Event) error {
	r.Events = append(r.Events, evt)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
