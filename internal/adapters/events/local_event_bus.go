package events

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/providers"
)

var errBusClosed = errors.New("event bus closed")

// LocalEventBus delivers events to subscribers in the same process.
// It is used when no Redis instance is configured.
type LocalEventBus struct {
	subscribers *subscriberSet
	closed      atomic.Bool
}

// NewLocalEventBus creates an in-process event bus
func NewLocalEventBus() providers.EventBus {
	return &LocalEventBus{subscribers: newSubscriberSet()}
}

// Publish hands the event to current subscribers without blocking
func (b *LocalEventBus) Publish(ctx context.Context, channel string, event *entities.ComplaintEvent) error {
	if b.closed.Load() {
		return errBusClosed
	}
	b.subscribers.broadcast(channel, event)
	return nil
}

// Subscribe subscribes to events on a channel until ctx is done
func (b *LocalEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ComplaintEvent, error) {
	if b.closed.Load() {
		return nil, errBusClosed
	}
	ch, _ := b.subscribers.add(channel)
	go func() {
		<-ctx.Done()
		b.subscribers.remove(channel, ch)
	}()
	return ch, nil
}

// Unsubscribe closes every subscriber of channel
func (b *LocalEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.subscribers.closeChannel(channel)
	return nil
}

// Close closes all subscriptions
func (b *LocalEventBus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	for _, channel := range b.subscribers.channels() {
		b.subscribers.closeChannel(channel)
	}
	return nil
}
