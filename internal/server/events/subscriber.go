package events

// Subscriber consumes events. Send must not block for long; the broker calls
// it from the broadcast loop.
type Subscriber interface {
	Send(Event) error
	Close() error
}

// SubscriberFunc adapts a function to Subscriber. Close is a no-op.
type SubscriberFunc func(Event) error

// Send calls f.
func (f SubscriberFunc) Send(e Event) error { return f(e) }

// Close does nothing.
func (f SubscriberFunc) Close() error { return nil }
