package service

import (
	"context"

	"github.com/garyjia/ggr-reconciler/internal/application/dispatcher"
	"github.com/garyjia/ggr-reconciler/internal/domain/event"
)

// RegisterEventLogging subscribes a handler that writes every report event to the log
func RegisterEventLogging(d dispatcher.Dispatcher, logger Logger) {
	d.SubscribeAll("event-log", func(ctx context.Context, evt *event.Event) error {
		kv := []interface{}{
			"event_id", evt.ID,
			"event_type", evt.Type.String(),
			"report_id", evt.ReportID,
			"actor", evt.ActorUserID,
			"correlation_id", evt.CorrelationID,
		}
		for k, v := range evt.Payload {
			kv = append(kv, k, v)
		}

		if evt.Type == event.TypeNotificationFailed {
			logger.Warn("Report event", kv...)
			return nil
		}
		logger.Info("Report event", kv...)
		return nil
	})
}
