package workflow

import (
	"context"
	"errors"

	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	domainwf "github.com/garyjia/ggr-reconciler/internal/domain/workflow"
)

var (
	// ErrEmptyReason is returned when a rejection reason is blank after trimming
	ErrEmptyReason = errors.New("rejection reason is required")

	// ErrTransitionPersistence wraps a failure to store the new status remotely.
	// The report remains pending when this is returned.
	ErrTransitionPersistence = errors.New("failed to persist report status")

	// ErrTransitionInProgress is returned when another transition for the same report is running
	ErrTransitionInProgress = errors.New("transition already in progress")

	// ErrInvalidTransition is returned for approve or reject on a non-pending report
	ErrInvalidTransition = domainwf.ErrInvalidTransition

	// ErrMissingOperator is reported as a notification warning when a report has no operator ID
	ErrMissingOperator = errors.New("report has no operator id")
)

// Lifecycle moves reports out of pending and notifies their operator
type Lifecycle interface {
	// Approve marks a pending report approved, then notifies the operator
	Approve(ctx context.Context, auth entity.AuthContext, report *entity.Report) (*TransitionOutcome, error)

	// Reject marks a pending report rejected with a reason, then notifies the operator
	Reject(ctx context.Context, auth entity.AuthContext, report *entity.Report, reason string) (*TransitionOutcome, error)
}

// TransitionOutcome describes a persisted transition.
// NotificationErr is a warning: the transition stands even when it is set.
type TransitionOutcome struct {
	ReportID        string              `json:"reportId"`
	PreviousStatus  entity.ReportStatus `json:"previousStatus"`
	NewStatus       entity.ReportStatus `json:"newStatus"`
	Reason          string              `json:"reason,omitempty"`
	Notified        bool                `json:"notified"`
	NotificationErr error               `json:"-"`
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
