package repository

import (
	"context"
	"fmt"

	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// TransitionRepository implements port.TransitionRepository
type TransitionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewTransitionRepository creates a new transition repository
func NewTransitionRepository(db *sqlite.DB, logger *zap.Logger) port.TransitionRepository {
	return &TransitionRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a status transition
func (r *TransitionRepository) Create(ctx context.Context, rec *entity.TransitionRecord) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, `
		INSERT INTO report_transitions (
			report_id, operator_id, previous_status, new_status, reason,
			actor_user_id, notification_status, notification_error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ReportID,
		rec.OperatorID,
		string(rec.PreviousStatus),
		string(rec.NewStatus),
		rec.Reason,
		rec.ActorUserID,
		rec.NotificationStatus,
		rec.NotificationError,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transition record", zap.String("report_id", rec.ReportID), zap.Error(err))
		return fmt.Errorf("failed to create transition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	rec.ID = id
	return nil
}

// ListByReportID retrieves all transitions for a report in order
func (r *TransitionRepository) ListByReportID(ctx context.Context, reportID string) ([]*entity.TransitionRecord, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT id, report_id, operator_id, previous_status, new_status, reason,
			actor_user_id, notification_status, notification_error, created_at
		FROM report_transitions
		WHERE report_id = ?
		ORDER BY created_at ASC, id ASC
	`, reportID)
	if err != nil {
		r.logger.Error("Failed to list transitions", zap.String("report_id", reportID), zap.Error(err))
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer rows.Close()

	records := []*entity.TransitionRecord{}
	for rows.Next() {
		var rec entity.TransitionRecord
		var previous, next string
		if err := rows.Scan(
			&rec.ID,
			&rec.ReportID,
			&rec.OperatorID,
			&previous,
			&next,
			&rec.Reason,
			&rec.ActorUserID,
			&rec.NotificationStatus,
			&rec.NotificationError,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		rec.PreviousStatus = entity.ReportStatus(previous)
		rec.NewStatus = entity.ReportStatus(next)
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Verify interface compliance
var _ port.TransitionRepository = (*TransitionRepository)(nil)
