package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/application/dispatcher"
	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/internal/domain/event"
	domainwf "github.com/garyjia/ggr-reconciler/internal/domain/workflow"
)

// lifecycleEngine is the concrete implementation of Lifecycle
type lifecycleEngine struct {
	api         port.ReportingAPI
	transitions port.TransitionRepository
	dispatcher  dispatcher.Dispatcher
	logger      Logger
	now         func() time.Time

	// Reports with a transition currently in flight, and reports this
	// engine has already moved out of pending
	mu       sync.Mutex
	inFlight map[string]struct{}
	decided  map[string]entity.ReportStatus
}

// EngineOption configures the lifecycle engine
type EngineOption func(*lifecycleEngine)

// WithDispatcher sets the event dispatcher for emitting events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *lifecycleEngine) {
		e.dispatcher = d
	}
}

// WithTransitionRepository records transitions in the local audit ledger
func WithTransitionRepository(repo port.TransitionRepository) EngineOption {
	return func(e *lifecycleEngine) {
		e.transitions = repo
	}
}

// WithClock overrides the clock used to stamp ledger records
func WithClock(now func() time.Time) EngineOption {
	return func(e *lifecycleEngine) {
		e.now = now
	}
}

// NewEngine creates a new report lifecycle engine
func NewEngine(api port.ReportingAPI, logger Logger, opts ...EngineOption) Lifecycle {
	e := &lifecycleEngine{
		api:      api,
		logger:   logger,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
		decided:  make(map[string]entity.ReportStatus),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Approve marks a pending report approved, then notifies the operator
func (e *lifecycleEngine) Approve(ctx context.Context, auth entity.AuthContext, report *entity.Report) (*TransitionOutcome, error) {
	return e.transition(ctx, auth, report, domainwf.TriggerApprove, "")
}

// Reject marks a pending report rejected, then notifies the operator with the reason
func (e *lifecycleEngine) Reject(ctx context.Context, auth entity.AuthContext, report *entity.Report, reason string) (*TransitionOutcome, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	return e.transition(ctx, auth, report, domainwf.TriggerReject, reason)
}

func (e *lifecycleEngine) transition(ctx context.Context, auth entity.AuthContext, report *entity.Report, trigger domainwf.Trigger, reason string) (*TransitionOutcome, error) {
	if report == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}

	machine, err := BuildReportStateMachine(domainwf.State(report.Status))
	if err != nil {
		return nil, fmt.Errorf("%w: report %s has status %q", ErrInvalidTransition, report.ID, report.Status)
	}

	previousState := machine.State()
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, fmt.Errorf("report %s: %w", report.ID, err)
	}
	newState := machine.State()

	if err := e.acquire(report.ID); err != nil {
		return nil, fmt.Errorf("report %s: %w", report.ID, err)
	}
	defer e.release(report.ID)

	if err := e.api.SetReportStatus(ctx, auth, report.ID, newState.Status()); err != nil {
		e.logger.Error("Failed to persist report status",
			"report_id", report.ID,
			"trigger", trigger.String(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrTransitionPersistence, err)
	}
	e.markDecided(report.ID, newState.Status())

	outcome := &TransitionOutcome{
		ReportID:       report.ID,
		PreviousStatus: previousState.Status(),
		NewStatus:      newState.Status(),
		Reason:         reason,
	}

	e.logger.Info("Report status updated",
		"report_id", report.ID,
		"previous_status", outcome.PreviousStatus,
		"new_status", outcome.NewStatus,
		"actor", auth.UserID,
	)

	outcome.NotificationErr = e.notify(ctx, auth, report, trigger, reason)
	outcome.Notified = outcome.NotificationErr == nil

	e.record(ctx, auth, report, outcome)
	e.publish(ctx, auth, report, trigger, outcome)

	return outcome, nil
}

// notify informs the operator of the decision. Failures are returned as warnings.
func (e *lifecycleEngine) notify(ctx context.Context, auth entity.AuthContext, report *entity.Report, trigger domainwf.Trigger, reason string) error {
	if report.OperatorID == "" {
		e.logger.Warn("Skipping operator notification", "report_id", report.ID, "error", ErrMissingOperator)
		return ErrMissingOperator
	}

	var err error
	switch trigger {
	case domainwf.TriggerApprove:
		err = e.api.NotifyOperatorApproved(ctx, auth, report.OperatorID)
	case domainwf.TriggerReject:
		err = e.api.NotifyOperatorRejected(ctx, auth, report.OperatorID, reason)
	}

	if err != nil {
		e.logger.Warn("Operator notification failed",
			"report_id", report.ID,
			"operator_id", report.OperatorID,
			"trigger", trigger.String(),
			"error", err,
		)
		return fmt.Errorf("notify operator %s: %w", report.OperatorID, err)
	}
	return nil
}

// record writes the transition to the audit ledger, best effort
func (e *lifecycleEngine) record(ctx context.Context, auth entity.AuthContext, report *entity.Report, outcome *TransitionOutcome) {
	if e.transitions == nil {
		return
	}

	rec := &entity.TransitionRecord{
		ReportID:           report.ID,
		OperatorID:         report.OperatorID,
		PreviousStatus:     outcome.PreviousStatus,
		NewStatus:          outcome.NewStatus,
		Reason:             outcome.Reason,
		ActorUserID:        auth.UserID,
		NotificationStatus: entity.NotificationStatusSent,
		CreatedAt:          e.now(),
	}
	switch {
	case errors.Is(outcome.NotificationErr, ErrMissingOperator):
		rec.NotificationStatus = entity.NotificationStatusSkipped
	case outcome.NotificationErr != nil:
		rec.NotificationStatus = entity.NotificationStatusFailed
		rec.NotificationError = outcome.NotificationErr.Error()
	}

	if err := e.transitions.Create(ctx, rec); err != nil {
		e.logger.Warn("Failed to record transition", "report_id", report.ID, "error", err)
	}
}

func (e *lifecycleEngine) publish(ctx context.Context, auth entity.AuthContext, report *entity.Report, trigger domainwf.Trigger, outcome *TransitionOutcome) {
	if e.dispatcher == nil {
		return
	}

	eventType := event.TypeReportApproved
	if trigger == domainwf.TriggerReject {
		eventType = event.TypeReportRejected
	}

	evt := event.NewEvent(eventType, report.ID, auth.UserID, map[string]interface{}{
		"operator_id":     report.OperatorID,
		"previous_status": outcome.PreviousStatus.String(),
		"new_status":      outcome.NewStatus.String(),
		"reason":          outcome.Reason,
		"notified":        outcome.Notified,
	})
	if err := e.dispatcher.Publish(ctx, evt); err != nil {
		e.logger.Warn("Event handlers failed", "event_type", eventType, "report_id", report.ID, "error", err)
	}

	if outcome.NotificationErr != nil {
		failed := event.NewEventWithCorrelation(event.TypeNotificationFailed, report.ID, auth.UserID, map[string]interface{}{
			"operator_id": report.OperatorID,
			"trigger":     trigger.String(),
			"error":       outcome.NotificationErr.Error(),
		}, evt.CorrelationID)
		if err := e.dispatcher.Publish(ctx, failed); err != nil {
			e.logger.Warn("Event handlers failed", "event_type", failed.Type, "report_id", report.ID, "error", err)
		}
	}
}

// acquire claims the report for one transition. A report decided earlier is
// refused even when the caller still holds a cached pending copy.
func (e *lifecycleEngine) acquire(reportID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if status, ok := e.decided[reportID]; ok {
		return fmt.Errorf("%w: already %s", ErrInvalidTransition, status)
	}
	if _, busy := e.inFlight[reportID]; busy {
		return ErrTransitionInProgress
	}
	e.inFlight[reportID] = struct{}{}
	return nil
}

func (e *lifecycleEngine) markDecided(reportID string, status entity.ReportStatus) {
	e.mu.Lock()
	e.decided[reportID] = status
	e.mu.Unlock()
}

func (e *lifecycleEngine) release(reportID string) {
	e.mu.Lock()
	delete(e.inFlight, reportID)
	e.mu.Unlock()
}
