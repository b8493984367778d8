package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus used on the simulation
// side: collision begin/end notifications and device lifecycle events.
//
// Handlers subscribe by Event.Type() within a topic (the default topic is
// ""). Publish delivers synchronously in the caller goroutine and joins
// handler errors. The haptic tick path never publishes on the bus.
type EventBus interface {
	// Publish delivers the event to subscribers of event.Type() in the
	// default topic.
	Publish(event Event) error
	// Subscribe registers a handler in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	// CreateTopic declares a topic. Repeat declarations are idempotent.
	CreateTopic(name string) error
	// SubscribeTopic registers a handler for eventType within a topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// PublishToTopic publishes to a specific topic.
	PublishToTopic(topic string, event Event) error

	// AddObserver registers an observer to receive delivery callbacks.
	AddObserver(obs Observer)
	// RemoveObserver unregisters a previously added observer.
	RemoveObserver(obs Observer)
	// GetMetrics returns accumulated counters. Counters only move while at
	// least one observer is registered.
	GetMetrics() Metrics
	// GetTopics returns a snapshot list of known topics.
	GetTopics() []TopicInfo
}

// Event is an immutable message transported by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Observer is notified about deliveries. Observers should return quickly.
type Observer interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration)
}

// Metrics is a minimal set of counters.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}

// TopicInfo describes a topic.
type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
