package dispatcher

import (
	"context"

	"github.com/garyjia/ggr-reconciler/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// Subscription describes a registered handler
type Subscription struct {
	Name      string
	EventType event.Type // empty for handlers subscribed to every type
	handler   Handler
}

func (s Subscription) matches(t event.Type) bool {
	return s.EventType == "" || s.EventType == t
}
