package bus

import "time"

// EventBus is an in-process pub/sub bus with a deferred delivery queue.
//
// Publish delivers synchronously in the caller goroutine. Enqueue stores the event
// until the owner calls Flush, which lets a producer running in the middle of a
// simulation step hand work back to the next point where state may be mutated.
// Handlers run in subscription order. Handler errors are joined and returned.
type EventBus interface {
	// Publish delivers the event immediately to every active subscriber of event.Type().
	Publish(event Event) error
	// Enqueue defers the event until the next Flush.
	Enqueue(event Event)
	// Flush delivers queued events in FIFO order. Events enqueued by handlers during
	// the flush are delivered in the same call.
	Flush() error
	// Pending reports the number of queued events.
	Pending() int

	// Subscribe registers a handler for an event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns counters collected while at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	Enqueued          uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
