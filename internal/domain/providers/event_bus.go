package providers

import (
	"context"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to complaint events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ComplaintEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ComplaintEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelComplaints carries every complaint mutation
const EventChannelComplaints = "complaints:events"
