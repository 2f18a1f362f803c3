package port

import (
	"context"

	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
)

// ReconciliationRepository persists comparison outcomes to the local audit ledger
type ReconciliationRepository interface {
	Create(ctx context.Context, record *entity.ReconciliationRecord) error
	ListByReportID(ctx context.Context, reportID string, limit int) ([]*entity.ReconciliationRecord, error)
}

// TransitionRepository persists status transitions to the local audit ledger
type TransitionRepository interface {
	Create(ctx context.Context, record *entity.TransitionRecord) error
	ListByReportID(ctx context.Context, reportID string) ([]*entity.TransitionRecord, error)
}
