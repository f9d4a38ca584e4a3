package events

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// subscription is one consumer channel and the event types it wants.
type subscription struct {
	ch    chan Event
	match func(Event) bool
}

// Bus fans catalog events out to in-process consumers such as the view
// registry and the cleanup handlers. Delivery never blocks a publisher:
// a consumer whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	log    *EventLog // nil disables persistence
	logger *slog.Logger
	closed bool
}

// NewBus creates a bus. log may be nil.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{log: log, logger: logger.With("component", "bus")}
}

// Publish records e in the event log, when there is one, and delivers it to
// every matching subscriber. Publishing on a closed bus is a no-op.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	if b.log != nil {
		// a failed write must not stop cache invalidation downstream
		if _, err := b.log.Append(ctx, e); err != nil {
			b.logger.Error("event not recorded", "type", e.EventType(), "entity_id", e.EntityID(), "error", err)
		}
	}

	for _, s := range b.subs {
		if !s.match(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			b.logger.Warn("subscriber full, event dropped",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID())
		}
	}
	return nil
}

// Subscribe returns a channel receiving events of exactly eventType.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	return b.subscribe(bufferSize, func(e Event) bool { return e.EventType() == eventType })
}

// SubscribePrefix returns a channel receiving every event whose type starts
// with prefix, e.g. MoviePrefix.
func (b *Bus) SubscribePrefix(prefix string, bufferSize int) <-chan Event {
	return b.subscribe(bufferSize, func(e Event) bool { return strings.HasPrefix(e.EventType(), prefix) })
}

func (b *Bus) subscribe(bufferSize int, match func(Event) bool) <-chan Event {
	ch := make(chan Event, bufferSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, subscription{ch: ch, match: match})
	return ch
}

// Unsubscribe removes and closes ch. Unknown channels are ignored.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.subs, func(s subscription) bool { return s.ch == ch })
	if i < 0 {
		return
	}
	close(b.subs[i].ch)
	b.subs = slices.Delete(b.subs, i, i+1)
}

// Close closes every subscriber channel. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	return nil
}
