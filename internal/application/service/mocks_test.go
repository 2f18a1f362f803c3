package service

import (
	"context"
	"sync"

	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
)

type mockReportingAPI struct {
	mu    sync.Mutex
	calls []string

	fetchFunc          func() ([]*entity.Report, error)
	setStatusFunc      func(reportID string, status entity.ReportStatus) error
	notifyApprovedFunc func(operatorID string) error
	notifyRejectedFunc func(operatorID, reason string) error
}

func (m *mockReportingAPI) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockReportingAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockReportingAPI) FetchPendingReports(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error) {
	m.record("fetch")
	if m.fetchFunc != nil {
		return m.fetchFunc()
	}
	return nil, nil
}

func (m *mockReportingAPI) SetReportStatus(ctx context.Context, auth entity.AuthContext, reportID string, status entity.ReportStatus) error {
	m.record("status:" + reportID + ":" + string(status))
	if m.setStatusFunc != nil {
		return m.setStatusFunc(reportID, status)
	}
	return nil
}

func (m *mockReportingAPI) NotifyOperatorApproved(ctx context.Context, auth entity.AuthContext, operatorID string) error {
	m.record("notify:approved:" + operatorID)
	if m.notifyApprovedFunc != nil {
		return m.notifyApprovedFunc(operatorID)
	}
	return nil
}

func (m *mockReportingAPI) NotifyOperatorRejected(ctx context.Context, auth entity.AuthContext, operatorID, reason string) error {
	m.record("notify:rejected:" + operatorID)
	if m.notifyRejectedFunc != nil {
		return m.notifyRejectedFunc(operatorID, reason)
	}
	return nil
}

type mockReconciliationRepo struct {
	records   []*entity.ReconciliationRecord
	createErr error
	lastLimit int
}

func (m *mockReconciliationRepo) Create(ctx context.Context, rec *entity.ReconciliationRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return nil
}

func (m *mockReconciliationRepo) ListByReportID(ctx context.Context, reportID string, limit int) ([]*entity.ReconciliationRecord, error) {
	m.lastLimit = limit
	var out []*entity.ReconciliationRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].ReportID == reportID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

type mockTransitionRepo struct {
	records []*entity.TransitionRecord
}

func (m *mockTransitionRepo) Create(ctx context.Context, rec *entity.TransitionRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockTransitionRepo) ListByReportID(ctx context.Context, reportID string) ([]*entity.TransitionRecord, error) {
	var out []*entity.TransitionRecord
	for _, r := range m.records {
		if r.ReportID == reportID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {}

func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	m.warns = append(m.warns, msg)
	m.mu.Unlock()
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockExporter struct {
	exportFunc func(result *entity.ComparisonResult, report *entity.Report) ([]byte, error)
}

func (m *mockExporter) Export(result *entity.ComparisonResult, report *entity.Report) ([]byte, error) {
	if m.exportFunc != nil {
		return m.exportFunc(result, report)
	}
	return []byte("xlsx"), nil
}

type mockStorage struct {
	saved   map[string][]byte
	saveErr error
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[path] = content
	return nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.saved[path], nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.saved[path]
	return ok
}

func (m *mockStorage) GetFullPath(relativePath string) string {
	return "/exports/" + relativePath
}
