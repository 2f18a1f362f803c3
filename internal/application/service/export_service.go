package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/application/reconcile"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/pkg/numtext"
)

// ExportedWorkbook is a rendered comparison spreadsheet
type ExportedWorkbook struct {
	FileName    string
	Content     []byte
	ArchivePath string
	Result      *entity.ComparisonResult
}

// ExportService renders comparison previews as spreadsheets.
// Exports never approve or reject anything.
type ExportService struct {
	catalog  *ReportCatalog
	engine   *reconcile.Engine
	exporter port.ComparisonExporter
	storage  port.FileStorage
	logger   Logger
	now      func() time.Time
}

// NewExportService creates an export service. storage may be nil to skip archiving.
func NewExportService(catalog *ReportCatalog, engine *reconcile.Engine, exporter port.ComparisonExporter, storage port.FileStorage, logger Logger) *ExportService {
	return &ExportService{
		catalog:  catalog,
		engine:   engine,
		exporter: exporter,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}

// Export compares the input against the report and renders the result
func (s *ExportService) Export(ctx context.Context, auth entity.AuthContext, reportID string, input EMSInput) (*ExportedWorkbook, error) {
	if err := authorize(auth, s.now(), entity.RoleAdmin, entity.RoleRegulator); err != nil {
		return nil, err
	}

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

	content, err := s.exporter.Export(result, report)
	if err != nil {
		s.logger.Error("Failed to render comparison workbook", "report_id", reportID, "error", err)
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	out := &ExportedWorkbook{
		FileName: fmt.Sprintf("reconciliation_%s_%s.xlsx", report.ID, report.Period()),
		Content:  content,
		Result:   result,
	}

	if s.storage != nil {
		path := fmt.Sprintf("%s/%s_%s", report.ID, s.now().UTC().Format("20060102T150405"), out.FileName)
		if err := s.storage.Save(ctx, path, content); err != nil {
			s.logger.Warn("Failed to archive comparison workbook", "report_id", reportID, "error", err)
		} else {
			out.ArchivePath = path
		}
	}

	s.logger.Info("Comparison workbook exported",
		"report_id", reportID,
		"match_status", result.MatchStatus,
		"report_ggr", numtext.FormatFloat(report.TotalGGR),
		"ems_ggr", numtext.FormatFloat(figures.TotalGGR),
		"size", len(content),
	)
	return out, nil
}
