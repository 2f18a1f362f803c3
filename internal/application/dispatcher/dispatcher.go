package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/ggr-reconciler/internal/domain/event"
)

// ErrClosed is returned when publishing to a closed dispatcher
var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher routes report events to subscribers
type Dispatcher interface {
	// Subscribe registers a named handler for one event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// SubscribeAll registers a named handler for every event type
	SubscribeAll(name string, handler Handler)

	// Publish runs all matching handlers in registration order.
	// Every handler runs even when an earlier one fails; failures are joined.
	Publish(ctx context.Context, evt *event.Event) error

	// Close rejects further publishing
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type eventDispatcher struct {
	mu     sync.RWMutex
	subs   []Subscription
	logger Logger
	closed atomic.Bool
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.add(Subscription{Name: name, EventType: eventType, handler: handler})
}

func (d *eventDispatcher) SubscribeAll(name string, handler Handler) {
	d.add(Subscription{Name: name, handler: handler})
}

func (d *eventDispatcher) add(sub Subscription) {
	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()

	d.info("Handler registered", "event_type", sub.EventType, "handler_name", sub.Name)
}

func (d *eventDispatcher) matching(t event.Type) []Subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Subscription
	for _, s := range d.subs {
		if s.matches(t) {
			out = append(out, s)
		}
	}
	return out
}

func (d *eventDispatcher) Publish(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return ErrClosed
	}

	subs := d.matching(evt.Type)
	d.info("Publishing event",
		"event_type", evt.Type,
		"event_id", evt.ID,
		"report_id", evt.ReportID,
		"handler_count", len(subs),
	)

	var errs []error
	for _, s := range subs {
		if err := d.safeExecute(ctx, evt, s); err != nil {
			d.error("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", s.Name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("handler %s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (d *eventDispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatcher already closed")
	}

	d.info("Dispatcher closed")
	return nil
}

// safeExecute runs a handler with panic recovery
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, s Subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			d.error("Handler panic recovered",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", s.Name,
				"panic", r,
			)
		}
	}()

	return s.handler(ctx, evt)
}

func (d *eventDispatcher) info(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, kv...)
	}
}

func (d *eventDispatcher) error(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, kv...)
	}
}
