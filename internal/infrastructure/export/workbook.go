// Package export renders comparison results as Excel workbooks.
package export

import (
	"fmt"

	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet names
const (
	SheetReconciliation = "Reconciliation"
	SheetGames          = "Games"
)

const (
	moneyFormat   = "#,##0.00"
	percentFormat = "0.00"
	notApplicable = "n/a"
)

// WorkbookExporter implements port.ComparisonExporter with excelize
type WorkbookExporter struct {
	logger *zap.Logger
}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter(logger *zap.Logger) *WorkbookExporter {
	return &WorkbookExporter{logger: logger}
}

type styles struct {
	header int
	money  int
	pct    int
}

// Export writes the comparison summary and the report's game breakdown
func (w *WorkbookExporter) Export(result *entity.ComparisonResult, report *entity.Report) ([]byte, error) {
	if result == nil || report == nil {
		return nil, fmt.Errorf("result and report are required")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReconciliation); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetGames); err != nil {
		return nil, fmt.Errorf("failed to create games sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	w.writeSummary(f, st, result, report)
	w.writeGames(f, st, report)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Debug("Comparison workbook rendered",
		zap.String("report_id", result.ReportID),
		zap.Int("size", buf.Len()))
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	moneyFmt := moneyFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create money style: %w", err)
	}

	pctFmt := percentFormat
	pct, err := f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create percent style: %w", err)
	}

	return styles{header: header, money: money, pct: pct}, nil
}

func (w *WorkbookExporter) writeSummary(f *excelize.File, st styles, result *entity.ComparisonResult, report *entity.Report) {
	sheet := SheetReconciliation

	info := [][2]interface{}{
		{"Report ID", result.ReportID},
		{"Operator", result.OperatorName},
		{"Period", report.Period()},
		{"Match status", string(result.MatchStatus)},
		{"Compared at", result.ComparedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
		{"Report GGR", report.TotalGGR},
	}
	for i, row := range info {
		r := i + 1
		w.setCell(f, sheet, cell("A", r), row[0])
		w.setCell(f, sheet, cell("B", r), row[1])
	}
	w.setStyle(f, sheet, "A1", cell("A", len(info)), st.header)
	w.setStyle(f, sheet, cell("B", len(info)), cell("B", len(info)), st.money)

	start := len(info) + 2
	headers := []string{"Field", "Report value", "EMS value", "Difference", "Difference %"}
	for i, h := range headers {
		w.setCell(f, sheet, cell(column(i), start), h)
	}
	w.setStyle(f, sheet, cell("A", start), cell(column(len(headers)-1), start), st.header)

	for i, d := range result.Discrepancies {
		r := start + 1 + i
		w.setCell(f, sheet, cell("A", r), d.Field)
		w.setCell(f, sheet, cell("B", r), d.ReportValue)
		w.setCell(f, sheet, cell("C", r), d.EMSValue)
		w.setCell(f, sheet, cell("D", r), d.Difference)
		if d.PercentDifference != nil {
			w.setCell(f, sheet, cell("E", r), *d.PercentDifference)
		} else {
			w.setCell(f, sheet, cell("E", r), notApplicable)
		}
		w.setStyle(f, sheet, cell("B", r), cell("D", r), st.money)
		w.setStyle(f, sheet, cell("E", r), cell("E", r), st.pct)
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "E", 20)
}

func (w *WorkbookExporter) writeGames(f *excelize.File, st styles, report *entity.Report) {
	sheet := SheetGames

	headers := []string{"Game type", "Stake", "GGR", "GGR %", "Gaming tax", "Net revenue"}
	for i, h := range headers {
		w.setCell(f, sheet, cell(column(i), 1), h)
	}
	w.setStyle(f, sheet, "A1", cell(column(len(headers)-1), 1), st.header)

	for i, g := range report.GameBreakdown {
		r := i + 2
		w.setCell(f, sheet, cell("A", r), g.GameType)
		w.setCell(f, sheet, cell("B", r), g.Stake)
		w.setCell(f, sheet, cell("C", r), g.GGR)
		w.setCell(f, sheet, cell("D", r), g.GGRPercentage)
		w.setCell(f, sheet, cell("E", r), g.GamingTax)
		w.setCell(f, sheet, cell("F", r), g.NetRevenue)
		w.setStyle(f, sheet, cell("B", r), cell("C", r), st.money)
		w.setStyle(f, sheet, cell("D", r), cell("D", r), st.pct)
		w.setStyle(f, sheet, cell("E", r), cell("F", r), st.money)
	}

	_ = f.SetColWidth(sheet, "A", "F", 16)
}

// setCell sets a cell value in the workbook
func (w *WorkbookExporter) setCell(f *excelize.File, sheet, ref string, value interface{}) {
	if err := f.SetCellValue(sheet, ref, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", ref),
			zap.Error(err))
	}
}

func (w *WorkbookExporter) setStyle(f *excelize.File, sheet, from, to string, style int) {
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		w.logger.Warn("Failed to set cell style",
			zap.String("sheet", sheet),
			zap.String("range", from+":"+to),
			zap.Error(err))
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// column maps 0 to A; the sheets never need more than a handful of columns
func column(i int) string {
	return string(rune('A' + i))
}

// Verify interface compliance
var _ port.ComparisonExporter = (*WorkbookExporter)(nil)
