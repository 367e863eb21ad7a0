// Package events carries class lifecycle notifications from the registry to
// whoever wants them: the CLI watcher, tests, metrics sinks.
package events

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Lifecycle event names published by the registry.
const (
	ClassDeclared  = "class.declared"
	ClassFinalized = "class.finalized"
	ClassFailed    = "class.failed"
)

// Event is a published notification about one class.
type Event struct {
	// Name is the event name (e.g. "class.finalized").
	Name string

	// Class is the class the event is about.
	Class string

	// Source is the definition file the class came from, if any.
	Source string

	// Err is set on failure events.
	Err error

	// Data carries event details such as the slot list.
	Data map[string]any
}

// Handler processes an event.
type Handler func(ctx context.Context, event Event) error

// Bus is a synchronous publish/subscribe bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler. Patterns:
//   - "class.finalized" - exact match
//   - "class.*" - every event in the "class" group
//   - "*" - all events
func (b *Bus) Subscribe(pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[pattern] = append(b.handlers[pattern], handler)
}

// Publish calls every matching handler in subscription order: exact
// subscribers first, then group wildcards, then global ones. Handler errors
// are logged and do not stop delivery.
func (b *Bus) Publish(ctx context.Context, event Event) {
	matched := b.match(event.Name)

	b.logger.Debug().
		Str("event", event.Name).
		Str("class", event.Class).
		Int("handlers", len(matched)).
		Msg("event published")

	for _, handler := range matched {
		if err := handler(ctx, event); err != nil {
			b.logger.Error().
				Err(err).
				Str("event", event.Name).
				Str("class", event.Class).
				Msg("event handler error")
		}
	}
}

// HasSubscribers reports whether publishing name would reach any handler.
func (b *Bus) HasSubscribers(name string) bool {
	return len(b.match(name)) > 0
}

func (b *Bus) match(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []Handler
	matched = append(matched, b.handlers[name]...)
	if group, _, ok := strings.Cut(name, "."); ok {
		matched = append(matched, b.handlers[group+".*"]...)
	}
	matched = append(matched, b.handlers["*"]...)
	return matched
}
