package service

import (
	"context"

	"councellorx-be/internal/pkg/logger"
	"councellorx-be/pkg/events"

	"github.com/google/uuid"
)

// EventPublisher is the bus side of pkg/nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// FeedNotifier pushes an event to every feed connection of a user.
type FeedNotifier interface {
	Notify(userID uuid.UUID, eventType string, data interface{})
}

// publishEvent never fails the caller; bus outages are only logged.
func publishEvent(ctx context.Context, p EventPublisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, events.New(eventType, data)); err != nil && log != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func notifyFeed(n FeedNotifier, userID uuid.UUID, eventType string, data interface{}) {
	if n == nil {
		return
	}
	n.Notify(userID, eventType, data)
}
