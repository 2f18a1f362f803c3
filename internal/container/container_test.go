package container

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/ggr-reconciler/internal/application/service"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/pkg/database"
)

type reportingServer struct {
	mu       sync.Mutex
	requests []string
}

func (s *reportingServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet && r.URL.Path == "/reports" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{"id": "r1", "operatorId": "op-1", "operatorName": "Lucky Star", "month": 3, "year": 2024, "totalGGR": 50000, "status": "pending"},
				},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
}

func (s *reportingServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func testConfig(baseURL, exportDir string) *Config {
	cfg := DefaultConfig()
	cfg.Database.Path = database.MemoryPath
	cfg.ReportingAPI.BaseURL = baseURL
	cfg.Auth.JWTSecret = "container-test-secret"
	cfg.Storage.ExportDir = exportDir
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	// base url and secret are required
	_, err = NewContainer(DefaultConfig(), zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	backend := &reportingServer{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	c, err := NewContainer(testConfig(srv.URL, t.TempDir()), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()))

	health := c.Health()
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)

	auth := entity.AuthContext{Token: "t", UserID: "admin-1", Role: entity.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
	outcome, err := c.Services().Reconciliation.Compare(context.Background(), auth, "r1", service.EMSInput{
		TotalGGR: "50,500", TotalStake: "1,000,000", TotalBetCount: "10",
	})
	require.NoError(t, err)
	assert.True(t, outcome.Result.IsMatched())
	require.NotNil(t, outcome.Approval)
	assert.Equal(t, entity.StatusApproved, outcome.Approval.NewStatus)

	assert.Contains(t, backend.Requests(), "PATCH /reports/r1/status")
	assert.Contains(t, backend.Requests(), "POST /notifications/operators/op-1/approved")

	history, err := c.Services().Reconciliation.History(context.Background(), auth, "r1")
	require.NoError(t, err)
	require.Len(t, history, 1)

	transitions, err := c.Services().Reconciliation.Transitions(context.Background(), auth, "r1")
	require.NoError(t, err)
	require.Len(t, transitions, 1)
	assert.Equal(t, entity.StatusApproved, transitions[0].NewStatus)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestConvertToZapFields(t *testing.T) {
	fields := convertToZapFields("report_id", "r1", 42, "skipped", "count", 3, "dangling")
	require.Len(t, fields, 2)
	assert.Equal(t, "report_id", fields[0].Key)
	assert.Equal(t, "count", fields[1].Key)
}
