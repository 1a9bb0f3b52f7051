package services

import (
	"context"
	"log/slog"
	"time"
)

// Event kinds fanned out after successful writes.
const (
	EventMealLiked            = "meal.liked"
	EventMealReviewed         = "meal.reviewed"
	EventMealReviewDeleted    = "meal.review_deleted"
	EventMealRated            = "meal.rated"
	EventMealPublished        = "meal.published"
	EventRequestStatusChanged = "request.status_changed"
	EventPaymentRecorded      = "payment.recorded"
)

type Event struct {
	Kind      string    `json:"kind"`
	MealID    uint      `json:"mealId,omitempty"`
	UserEmail string    `json:"userEmail,omitempty"`
	Data      any       `json:"data,omitempty"`
	At        time.Time `json:"at"`
}

// EventPublisher is an external sink such as RabbitMQ or SNS.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// defaultPublishTimeout bounds each publisher call made from a request.
const defaultPublishTimeout = 3 * time.Second

// EventBus delivers events to the websocket hub and every configured
// publisher. A nil bus is valid and drops everything.
type EventBus struct {
	rt         *RealtimeHub
	publishers []EventPublisher
	timeout    time.Duration
}

func NewEventBus(rt *RealtimeHub, publishers ...EventPublisher) *EventBus {
	return &EventBus{rt: rt, publishers: publishers, timeout: defaultPublishTimeout}
}

// Emit never fails the caller; sink errors are logged.
func (b *EventBus) Emit(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if b.rt != nil {
		b.rt.Broadcast(e)
	}
	// publishers outlive a cancelled request but not the timeout
	base := context.WithoutCancel(ctx)
	for _, p := range b.publishers {
		pctx, cancel := context.WithTimeout(base, b.timeout)
		err := p.Publish(pctx, e)
		cancel()
		if err != nil {
			slog.Warn("event publish failed", "kind", e.Kind, "err", err)
		}
	}
}
