package port

import (
	"context"
	"fmt"

	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
)

// ReportingAPI defines the operations of the external reporting service.
// Every call carries the caller's AuthContext; implementations must not cache it.
type ReportingAPI interface {
	FetchPendingReports(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error)
	SetReportStatus(ctx context.Context, auth entity.AuthContext, reportID string, status entity.ReportStatus) error
	NotifyOperatorApproved(ctx context.Context, auth entity.AuthContext, operatorID string) error
	NotifyOperatorRejected(ctx context.Context, auth entity.AuthContext, operatorID, reason string) error
}

// APIError is a non-2xx response from the reporting service
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("reporting api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("reporting api: status %d: %s", e.StatusCode, e.Message)
}
