package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/application/dispatcher"
	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/application/reconcile"
	"github.com/garyjia/ggr-reconciler/internal/application/workflow"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/internal/domain/event"
	"github.com/garyjia/ggr-reconciler/pkg/numtext"
)

// CompareOutcome is the result of one reconciliation attempt.
// ApprovalErr and NotificationErr describe follow-up failures after a match;
// Result is valid whenever the call itself returned no error.
type CompareOutcome struct {
	Result          *entity.ComparisonResult    `json:"result"`
	Figures         entity.EMSFigures           `json:"figures"`
	Approval        *workflow.TransitionOutcome `json:"approval,omitempty"`
	ApprovalErr     error                       `json:"-"`
	NotificationErr error                       `json:"-"`
}

// ReconciliationService runs comparisons and lifecycle decisions for an administrator
type ReconciliationService interface {
	PendingReports(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error)
	RefreshReports(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error)
	GetReport(ctx context.Context, auth entity.AuthContext, reportID string) (*entity.Report, error)
	Compare(ctx context.Context, auth entity.AuthContext, reportID string, input EMSInput) (*CompareOutcome, error)
	Approve(ctx context.Context, auth entity.AuthContext, reportID string) (*workflow.TransitionOutcome, error)
	Reject(ctx context.Context, auth entity.AuthContext, reportID, reason string) (*workflow.TransitionOutcome, error)
	History(ctx context.Context, auth entity.AuthContext, reportID string) ([]*entity.ReconciliationRecord, error)
	Transitions(ctx context.Context, auth entity.AuthContext, reportID string) ([]*entity.TransitionRecord, error)
}

type reconciliationServiceImpl struct {
	catalog     *ReportCatalog
	engine      *reconcile.Engine
	lifecycle   workflow.Lifecycle
	records     port.ReconciliationRepository
	transitions port.TransitionRepository
	dispatcher  dispatcher.Dispatcher
	logger      Logger
	now         func() time.Time
	historySize int
}

// Option configures the reconciliation service
type Option func(*reconciliationServiceImpl)

// WithLedger enables recording comparisons and reading back audit history
func WithLedger(records port.ReconciliationRepository, transitions port.TransitionRepository) Option {
	return func(s *reconciliationServiceImpl) {
		s.records = records
		s.transitions = transitions
	}
}

// WithDispatcher sets the event dispatcher for report.compared events
func WithDispatcher(d dispatcher.Dispatcher) Option {
	return func(s *reconciliationServiceImpl) {
		s.dispatcher = d
	}
}

// WithClock overrides the clock used for session expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *reconciliationServiceImpl) {
		s.now = now
	}
}

// WithHistorySize caps the number of comparisons History returns
func WithHistorySize(n int) Option {
	return func(s *reconciliationServiceImpl) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	catalog *ReportCatalog,
	engine *reconcile.Engine,
	lifecycle workflow.Lifecycle,
	logger Logger,
	opts ...Option,
) ReconciliationService {
	s := &reconciliationServiceImpl{
		catalog:     catalog,
		engine:      engine,
		lifecycle:   lifecycle,
		logger:      logger,
		now:         time.Now,
		historySize: 50,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PendingReports lists reports awaiting review
func (s *reconciliationServiceImpl) PendingReports(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin, entity.RoleRegulator); err != nil {
		return nil, err
	}
	return s.catalog.Pending(ctx, auth)
}

// RefreshReports refetches the pending list from the reporting service
func (s *reconciliationServiceImpl) RefreshReports(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin, entity.RoleRegulator); err != nil {
		return nil, err
	}
	return s.catalog.Reload(ctx, auth)
}

// GetReport returns one pending report
func (s *reconciliationServiceImpl) GetReport(ctx context.Context, auth entity.AuthContext, reportID string) (*entity.Report, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin, entity.RoleRegulator); err != nil {
		return nil, err
	}
	return s.catalog.Find(ctx, auth, reportID)
}

// Compare validates the EMS input, reconciles it against the report and
// approves the report when the figures match.
func (s *reconciliationServiceImpl) Compare(ctx context.Context, auth entity.AuthContext, reportID string, input EMSInput) (*CompareOutcome, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin); err != nil {
		return nil, err
	}

	// Validation happens before any network call
	figures, err := ParseFigures(input)
	if err != nil {
		return nil, err
	}

	report, err := s.catalog.Find(ctx, auth, reportID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Compare(report, figures)
	if err != nil {
		return nil, fmt.Errorf("compare report %s: %w", reportID, err)
	}

	s.logger.Info("Report compared",
		"report_id", reportID,
		"match_status", result.MatchStatus,
		"report_ggr", numtext.FormatFloat(report.TotalGGR),
		"ems_ggr", numtext.FormatFloat(figures.TotalGGR),
		"actor", auth.UserID,
	)

	outcome := &CompareOutcome{Result: result, Figures: figures}

	if result.IsMatched() {
		approval, err := s.lifecycle.Approve(ctx, auth, report)
		if err != nil {
			s.logger.Error("Automatic approval failed", "report_id", reportID, "error", err)
			outcome.ApprovalErr = err
		} else {
			outcome.Approval = approval
			outcome.NotificationErr = approval.NotificationErr
			s.reload(ctx, auth)
		}
	}

	s.recordComparison(ctx, auth, report, figures, result)
	return outcome, nil
}

// Approve approves a pending report without a comparison
func (s *reconciliationServiceImpl) Approve(ctx context.Context, auth entity.AuthContext, reportID string) (*workflow.TransitionOutcome, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin); err != nil {
		return nil, err
	}

	report, err := s.catalog.Find(ctx, auth, reportID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.lifecycle.Approve(ctx, auth, report)
	if err != nil {
		return nil, err
	}
	s.reload(ctx, auth)
	return outcome, nil
}

// Reject rejects a pending report with a reason
func (s *reconciliationServiceImpl) Reject(ctx context.Context, auth entity.AuthContext, reportID, reason string) (*workflow.TransitionOutcome, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin); err != nil {
		return nil, err
	}

	report, err := s.catalog.Find(ctx, auth, reportID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.lifecycle.Reject(ctx, auth, report, reason)
	if err != nil {
		return nil, err
	}
	s.reload(ctx, auth)
	return outcome, nil
}

// History returns the recorded comparisons for a report, newest first
func (s *reconciliationServiceImpl) History(ctx context.Context, auth entity.AuthContext, reportID string) ([]*entity.ReconciliationRecord, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin, entity.RoleRegulator); err != nil {
		return nil, err
	}
	if s.records == nil {
		return []*entity.ReconciliationRecord{}, nil
	}
	return s.records.ListByReportID(ctx, reportID, s.historySize)
}

// Transitions returns the recorded lifecycle transitions for a report
func (s *reconciliationServiceImpl) Transitions(ctx context.Context, auth entity.AuthContext, reportID string) ([]*entity.TransitionRecord, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin, entity.RoleRegulator); err != nil {
		return nil, err
	}
	if s.transitions == nil {
		return []*entity.TransitionRecord{}, nil
	}
	return s.transitions.ListByReportID(ctx, reportID)
}

// reload refreshes the catalog after a transition; failures only cost freshness
func (s *reconciliationServiceImpl) reload(ctx context.Context, auth entity.AuthContext) {
	if _, err := s.catalog.Reload(ctx, auth); err != nil {
		s.logger.Warn("Failed to reload pending reports after transition", "error", err)
		s.catalog.Invalidate()
	}
}

func (s *reconciliationServiceImpl) recordComparison(ctx context.Context, auth entity.AuthContext, report *entity.Report, figures entity.EMSFigures, result *entity.ComparisonResult) {
	if s.records != nil {
		rec := entity.NewReconciliationRecord(report, figures, result, auth.UserID)
		if err := s.records.Create(ctx, rec); err != nil {
			s.logger.Warn("Failed to record comparison", "report_id", report.ID, "error", err)
		}
	}

	if s.dispatcher != nil {
		evt := event.NewEvent(event.TypeReportCompared, report.ID, auth.UserID, map[string]interface{}{
			"match_status": string(result.MatchStatus),
			"report_ggr":   report.TotalGGR,
			"ems_ggr":      figures.TotalGGR,
		})
		if err := s.dispatcher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Event handlers failed", "event_type", evt.Type, "report_id", report.ID, "error", err)
		}
	}
}

// IsValidationError reports whether err is an input validation failure
func IsValidationError(err error) bool {
	var figErr *FigureError
	return errors.As(err, &figErr) || errors.Is(err, workflow.ErrEmptyReason)
}
