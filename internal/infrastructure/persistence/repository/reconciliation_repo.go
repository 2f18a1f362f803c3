package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ReconciliationRepository implements port.ReconciliationRepository
type ReconciliationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewReconciliationRepository creates a new reconciliation repository
func NewReconciliationRepository(db *sqlite.DB, logger *zap.Logger) port.ReconciliationRepository {
	return &ReconciliationRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a comparison and its discrepancies atomically
func (r *ReconciliationRepository) Create(ctx context.Context, rec *entity.ReconciliationRecord) error {
	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := r.db.Executor(txCtx)

		result, err := exec.ExecContext(txCtx, `
			INSERT INTO reconciliations (
				report_id, operator_name, month, year, report_ggr, ems_ggr,
				ems_stake, ems_bet_count, match_status, actor_user_id, compared_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ReportID,
			rec.OperatorName,
			rec.Month,
			rec.Year,
			rec.ReportGGR,
			rec.EMSGGR,
			rec.EMSStake,
			rec.EMSBetCount,
			string(rec.MatchStatus),
			rec.ActorUserID,
			rec.ComparedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create reconciliation record", zap.String("report_id", rec.ReportID), zap.Error(err))
			return fmt.Errorf("failed to create reconciliation: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		for _, d := range rec.Discrepancies {
			var pct sql.NullFloat64
			if d.PercentDifference != nil {
				pct = sql.NullFloat64{Float64: *d.PercentDifference, Valid: true}
			}
			if _, err := exec.ExecContext(txCtx, `
				INSERT INTO reconciliation_discrepancies (
					reconciliation_id, field, report_value, ems_value, difference, percent_difference
				) VALUES (?, ?, ?, ?, ?, ?)
			`, id, d.Field, d.ReportValue, d.EMSValue, d.Difference, pct); err != nil {
				return fmt.Errorf("failed to create discrepancy: %w", err)
			}
		}

		rec.ID = id
		return nil
	})
}

// ListByReportID returns the newest comparisons for a report
func (r *ReconciliationRepository) ListByReportID(ctx context.Context, reportID string, limit int) ([]*entity.ReconciliationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT id, report_id, operator_name, month, year, report_ggr, ems_ggr,
			ems_stake, ems_bet_count, match_status, actor_user_id, compared_at
		FROM reconciliations
		WHERE report_id = ?
		ORDER BY compared_at DESC, id DESC
		LIMIT ?
	`, reportID, limit)
	if err != nil {
		r.logger.Error("Failed to list reconciliations", zap.String("report_id", reportID), zap.Error(err))
		return nil, fmt.Errorf("failed to list reconciliations: %w", err)
	}
	defer rows.Close()

	records := []*entity.ReconciliationRecord{}
	byID := make(map[int64]*entity.ReconciliationRecord)
	for rows.Next() {
		var rec entity.ReconciliationRecord
		var status string
		if err := rows.Scan(
			&rec.ID,
			&rec.ReportID,
			&rec.OperatorName,
			&rec.Month,
			&rec.Year,
			&rec.ReportGGR,
			&rec.EMSGGR,
			&rec.EMSStake,
			&rec.EMSBetCount,
			&status,
			&rec.ActorUserID,
			&rec.ComparedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation: %w", err)
		}
		rec.MatchStatus = entity.MatchStatus(status)
		rec.Discrepancies = []entity.Discrepancy{}
		records = append(records, &rec)
		byID[rec.ID] = &rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	if err := r.attachDiscrepancies(ctx, reportID, byID); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ReconciliationRepository) attachDiscrepancies(ctx context.Context, reportID string, byID map[int64]*entity.ReconciliationRecord) error {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT d.reconciliation_id, d.field, d.report_value, d.ems_value, d.difference, d.percent_difference
		FROM reconciliation_discrepancies d
		JOIN reconciliations r ON r.id = d.reconciliation_id
		WHERE r.report_id = ?
		ORDER BY d.id ASC
	`, reportID)
	if err != nil {
		return fmt.Errorf("failed to list discrepancies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recID int64
		var d entity.Discrepancy
		var pct sql.NullFloat64
		if err := rows.Scan(&recID, &d.Field, &d.ReportValue, &d.EMSValue, &d.Difference, &pct); err != nil {
			return fmt.Errorf("failed to scan discrepancy: %w", err)
		}
		if pct.Valid {
			v := pct.Float64
			d.PercentDifference = &v
		}
		// rows for comparisons beyond the limit are ignored
		if rec, ok := byID[recID]; ok {
			rec.Discrepancies = append(rec.Discrepancies, d)
		}
	}
	return rows.Err()
}

// Verify interface compliance
var _ port.ReconciliationRepository = (*ReconciliationRepository)(nil)
