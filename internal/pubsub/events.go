// Package pubsub provides a generic publish/subscribe event broker used to
// observe registry load lifecycles without coupling consumers to the loader.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// ItemDeliveredEvent fires once per payload the loader delivers.
	ItemDeliveredEvent EventType = "item_delivered"
	// ItemDroppedEvent fires when a container payload lacks the
	// requested component and is silently skipped.
	ItemDroppedEvent EventType = "item_dropped"
	// LoadCompletedEvent fires exactly once when a registry load
	// finishes and its table is sealed.
	LoadCompletedEvent EventType = "load_completed"
	// LogLineEvent carries a formatted log entry from the log package.
	LogLineEvent EventType = "log_line"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
