package events

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Broker distributes events to named subscribers. Registration and delivery
// both happen on the goroutine running Run.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber

	events     chan Event
	register   chan subscription
	unregister chan string
	logger     *zerolog.Logger
}

type subscription struct {
	name string
	sub  Subscriber
}

// NewBroker creates a broker with room for 256 pending events.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		subscribers: make(map[string]Subscriber),
		events:      make(chan Event, 256),
		register:    make(chan subscription, 8),
		unregister:  make(chan string, 8),
		logger:      logger,
	}
}

// Run delivers events until ctx is done, then closes every subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for _, sub := range b.subscribers {
				_ = sub.Close()
			}
			clear(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Msg("Event broker stopped")
			return

		case s := <-b.register:
			b.mu.Lock()
			if old, ok := b.subscribers[s.name]; ok {
				_ = old.Close()
			}
			b.subscribers[s.name] = s.sub
			n := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Str("subscriber", s.name).Int("total_subscribers", n).Msg("Subscriber registered")

		case name := <-b.unregister:
			b.mu.Lock()
			if sub, ok := b.subscribers[name]; ok {
				_ = sub.Close()
				delete(b.subscribers, name)
			}
			n := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Str("subscriber", name).Int("total_subscribers", n).Msg("Subscriber unregistered")

		case e := <-b.events:
			b.deliver(e)
		}
	}
}

func (b *Broker) deliver(e Event) {
	b.mu.RLock()
	names := slices.Sorted(maps.Keys(b.subscribers))
	subs := make([]Subscriber, len(names))
	for i, name := range names {
		subs[i] = b.subscribers[name]
	}
	b.mu.RUnlock()

	for i, sub := range subs {
		if err := sub.Send(e); err != nil {
			b.logger.Warn().
				Err(err).
				Str("subscriber", names[i]).
				Str("event_type", string(e.Type)).
				Msg("Failed to deliver event")
		}
	}
	b.logger.Debug().Str("event_type", string(e.Type)).Int("subscribers", len(subs)).Msg("Event delivered")
}

// Publish queues an event. It never blocks; when the queue is full the event
// is dropped and a warning logged.
func (b *Broker) Publish(t Type, data any) {
	e := Event{Type: t, Timestamp: time.Now().UTC(), Data: data}
	select {
	case b.events <- e:
	default:
		b.logger.Warn().Str("event_type", string(t)).Msg("Event queue full, event dropped")
	}
}

// Subscribe registers sub under name, replacing any subscriber with that name.
func (b *Broker) Subscribe(name string, sub Subscriber) {
	b.register <- subscription{name: name, sub: sub}
}

// Unsubscribe removes and closes the subscriber registered under name.
func (b *Broker) Unsubscribe(name string) {
	b.unregister <- name
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
