package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/application/dispatcher"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/internal/domain/event"
	domainwf "github.com/garyjia/ggr-reconciler/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type mockReportingAPI struct {
	mu    sync.Mutex
	calls []string

	setStatusFunc      func(reportID string, status entity.ReportStatus) error
	notifyApprovedFunc func(operatorID string) error
	notifyRejectedFunc func(operatorID, reason string) error
}

func (m *mockReportingAPI) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockReportingAPI) FetchPendingReports(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error) {
	m.record("fetch")
	return nil, nil
}

func (m *mockReportingAPI) SetReportStatus(ctx context.Context, auth entity.AuthContext, reportID string, status entity.ReportStatus) error {
	m.record("status:" + string(status))
	if m.setStatusFunc != nil {
		return m.setStatusFunc(reportID, status)
	}
	return nil
}

func (m *mockReportingAPI) NotifyOperatorApproved(ctx context.Context, auth entity.AuthContext, operatorID string) error {
	m.record("notify:approved")
	if m.notifyApprovedFunc != nil {
		return m.notifyApprovedFunc(operatorID)
	}
	return nil
}

func (m *mockReportingAPI) NotifyOperatorRejected(ctx context.Context, auth entity.AuthContext, operatorID, reason string) error {
	m.record("notify:rejected")
	if m.notifyRejectedFunc != nil {
		return m.notifyRejectedFunc(operatorID, reason)
	}
	return nil
}

func (m *mockReportingAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type mockTransitionRepo struct {
	records   []*entity.TransitionRecord
	createErr error
}

func (m *mockTransitionRepo) Create(ctx context.Context, rec *entity.TransitionRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockTransitionRepo) ListByReportID(ctx context.Context, reportID string) ([]*entity.TransitionRecord, error) {
	return m.records, nil
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

var admin = entity.AuthContext{Token: "t", UserID: "admin-1", Role: entity.RoleAdmin}

func pendingReport() *entity.Report {
	return &entity.Report{ID: "r1", OperatorID: "op-1", OperatorName: "Lucky Star", TotalGGR: 50000, Status: entity.StatusPending}
}

func TestBuildReportStateMachine(t *testing.T) {
	m, err := BuildReportStateMachine(domainwf.StatePending)
	require.NoError(t, err)
	assert.Equal(t, []domainwf.Trigger{domainwf.TriggerApprove, domainwf.TriggerReject}, m.PermittedTriggers())

	for _, terminal := range []domainwf.State{domainwf.StateApproved, domainwf.StateRejected} {
		m, err := BuildReportStateMachine(terminal)
		require.NoError(t, err)
		assert.Empty(t, m.PermittedTriggers())
		assert.ErrorIs(t, m.Fire(context.Background(), domainwf.TriggerApprove), domainwf.ErrInvalidTransition)
	}

	_, err = BuildReportStateMachine(domainwf.State("archived"))
	assert.ErrorIs(t, err, domainwf.ErrInvalidState)
}

func TestApprove_PersistsThenNotifies(t *testing.T) {
	api := &mockReportingAPI{}
	repo := &mockTransitionRepo{}
	engine := NewEngine(api, nopLogger{}, WithTransitionRepository(repo))

	outcome, err := engine.Approve(context.Background(), admin, pendingReport())
	require.NoError(t, err)

	assert.Equal(t, []string{"status:approved", "notify:approved"}, api.Calls())
	assert.Equal(t, entity.StatusPending, outcome.PreviousStatus)
	assert.Equal(t, entity.StatusApproved, outcome.NewStatus)
	assert.True(t, outcome.Notified)
	assert.NoError(t, outcome.NotificationErr)

	require.Len(t, repo.records, 1)
	assert.Equal(t, entity.NotificationStatusSent, repo.records[0].NotificationStatus)
	assert.Equal(t, "admin-1", repo.records[0].ActorUserID)
}

func TestApprove_PersistenceFailureSkipsNotification(t *testing.T) {
	apiErr := errors.New("503 unavailable")
	api := &mockReportingAPI{
		setStatusFunc: func(string, entity.ReportStatus) error { return apiErr },
	}
	repo := &mockTransitionRepo{}
	engine := NewEngine(api, nopLogger{}, WithTransitionRepository(repo))

	outcome, err := engine.Approve(context.Background(), admin, pendingReport())
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, ErrTransitionPersistence)
	assert.ErrorIs(t, err, apiErr)
	assert.Equal(t, []string{"status:approved"}, api.Calls())
	assert.Empty(t, repo.records)
}

func TestApprove_NotificationFailureIsWarning(t *testing.T) {
	api := &mockReportingAPI{
		notifyApprovedFunc: func(string) error { return errors.New("mail relay down") },
	}
	repo := &mockTransitionRepo{}
	engine := NewEngine(api, nopLogger{}, WithTransitionRepository(repo))

	outcome, err := engine.Approve(context.Background(), admin, pendingReport())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, outcome.NewStatus)
	assert.False(t, outcome.Notified)
	assert.Error(t, outcome.NotificationErr)

	require.Len(t, repo.records, 1)
	assert.Equal(t, entity.NotificationStatusFailed, repo.records[0].NotificationStatus)
	assert.Contains(t, repo.records[0].NotificationError, "mail relay down")
}

func TestReject_RequiresReason(t *testing.T) {
	api := &mockReportingAPI{}
	engine := NewEngine(api, nopLogger{})

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := engine.Reject(context.Background(), admin, pendingReport(), reason)
		assert.ErrorIs(t, err, ErrEmptyReason)
	}
	assert.Empty(t, api.Calls(), "no network call for an empty reason")
}

func TestReject_TrimsReasonAndNotifies(t *testing.T) {
	var gotReason string
	api := &mockReportingAPI{
		notifyRejectedFunc: func(operatorID, reason string) error {
			gotReason = reason
			return nil
		},
	}
	engine := NewEngine(api, nopLogger{})

	outcome, err := engine.Reject(context.Background(), admin, pendingReport(), "  GGR mismatch  ")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, outcome.NewStatus)
	assert.Equal(t, "GGR mismatch", gotReason)
	assert.Equal(t, "GGR mismatch", outcome.Reason)
	assert.Equal(t, []string{"status:rejected", "notify:rejected"}, api.Calls())
}

func TestReject_NotificationFailureStillSucceeds(t *testing.T) {
	api := &mockReportingAPI{
		notifyRejectedFunc: func(string, string) error { return errors.New("timeout") },
	}
	engine := NewEngine(api, nopLogger{})

	outcome, err := engine.Reject(context.Background(), admin, pendingReport(), "late filing")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, outcome.NewStatus)
	assert.Error(t, outcome.NotificationErr)
}

func TestTransition_NonPendingIsRefusedWithoutNetwork(t *testing.T) {
	api := &mockReportingAPI{}
	engine := NewEngine(api, nopLogger{})

	for _, status := range []entity.ReportStatus{entity.StatusApproved, entity.StatusRejected, "", "archived"} {
		r := pendingReport()
		r.Status = status

		_, err := engine.Approve(context.Background(), admin, r)
		assert.ErrorIs(t, err, ErrInvalidTransition, "approve from %q", status)

		_, err = engine.Reject(context.Background(), admin, r, "reason")
		assert.ErrorIs(t, err, ErrInvalidTransition, "reject from %q", status)
	}
	assert.Empty(t, api.Calls())
}

func TestTransition_MissingOperatorIsSkipped(t *testing.T) {
	api := &mockReportingAPI{}
	repo := &mockTransitionRepo{}
	engine := NewEngine(api, nopLogger{}, WithTransitionRepository(repo))

	r := pendingReport()
	r.OperatorID = ""
	outcome, err := engine.Approve(context.Background(), admin, r)
	require.NoError(t, err)
	assert.ErrorIs(t, outcome.NotificationErr, ErrMissingOperator)
	assert.Equal(t, []string{"status:approved"}, api.Calls())
	require.Len(t, repo.records, 1)
	assert.Equal(t, entity.NotificationStatusSkipped, repo.records[0].NotificationStatus)
}

func TestTransition_LedgerFailureDoesNotFail(t *testing.T) {
	api := &mockReportingAPI{}
	repo := &mockTransitionRepo{createErr: errors.New("disk full")}
	engine := NewEngine(api, nopLogger{}, WithTransitionRepository(repo))

	_, err := engine.Approve(context.Background(), admin, pendingReport())
	assert.NoError(t, err)
}

func TestTransition_RejectsConcurrentTransitionOfSameReport(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	api := &mockReportingAPI{
		setStatusFunc: func(string, entity.ReportStatus) error {
			close(entered)
			<-release
			return nil
		},
	}
	engine := NewEngine(api, nopLogger{})

	done := make(chan error, 1)
	go func() {
		_, err := engine.Approve(context.Background(), admin, pendingReport())
		done <- err
	}()

	<-entered
	_, err := engine.Reject(context.Background(), admin, pendingReport(), "duplicate")
	assert.ErrorIs(t, err, ErrTransitionInProgress)

	close(release)
	assert.NoError(t, <-done)
}

func TestTransition_DecidedReportRefusesStalePendingCopy(t *testing.T) {
	api := &mockReportingAPI{}
	engine := NewEngine(api, nopLogger{})

	_, err := engine.Approve(context.Background(), admin, pendingReport())
	require.NoError(t, err)

	// a caller still holding the pending copy
	_, err = engine.Reject(context.Background(), admin, pendingReport(), "late reason")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = engine.Approve(context.Background(), admin, pendingReport())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, []string{"status:approved", "notify:approved"}, api.Calls())
}

func TestTransition_FailedPersistLeavesReportPending(t *testing.T) {
	fail := true
	api := &mockReportingAPI{
		setStatusFunc: func(string, entity.ReportStatus) error {
			if fail {
				return errors.New("503")
			}
			return nil
		},
	}
	engine := NewEngine(api, nopLogger{})

	_, err := engine.Approve(context.Background(), admin, pendingReport())
	require.ErrorIs(t, err, ErrTransitionPersistence)

	fail = false
	outcome, err := engine.Reject(context.Background(), admin, pendingReport(), "mismatch")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, outcome.NewStatus)
}

func TestTransition_PublishesEvents(t *testing.T) {
	d := dispatcher.NewDispatcher()
	var mu sync.Mutex
	var types []event.Type
	d.SubscribeAll("collect", func(ctx context.Context, evt *event.Event) error {
		mu.Lock()
		types = append(types, evt.Type)
		mu.Unlock()
		return nil
	})

	api := &mockReportingAPI{
		notifyRejectedFunc: func(string, string) error { return errors.New("down") },
	}
	fixed := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	engine := NewEngine(api, nopLogger{}, WithDispatcher(d), WithClock(func() time.Time { return fixed }))

	_, err := engine.Approve(context.Background(), admin, pendingReport())
	require.NoError(t, err)
	_, err = engine.Reject(context.Background(), admin, &entity.Report{ID: "r2", OperatorID: "op-2", Status: entity.StatusPending}, "mismatch")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []event.Type{event.TypeReportApproved, event.TypeReportRejected, event.TypeNotificationFailed}, types)
}
