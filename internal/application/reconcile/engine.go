// Package reconcile decides whether EMS settlement figures agree with an
// operator's monthly report.
package reconcile

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TolerancePercent is the inclusive GGR deviation still treated as a match
const TolerancePercent = 2

var (
	// ErrNonFiniteFigure is returned when a GGR value is NaN or infinite
	ErrNonFiniteFigure = errors.New("non-finite figure")

	// ErrNilReport is returned when Compare is called without a report
	ErrNilReport = errors.New("report is nil")
)

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.NewFromInt(TolerancePercent)
)

// Engine compares reports against EMS figures. It has no side effects.
type Engine struct {
	now func() time.Time
}

// Option configures the engine
type Option func(*Engine)

// WithClock overrides the clock used to stamp results
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a reconciliation engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare reconciles the report's total GGR against the EMS total GGR.
// Stake and bet count are carried on figures but never compared.
func (e *Engine) Compare(report *entity.Report, figures entity.EMSFigures) (*entity.ComparisonResult, error) {
	if report == nil {
		return nil, ErrNilReport
	}
	if !finite(report.TotalGGR) {
		return nil, fmt.Errorf("%w: report GGR %v", ErrNonFiniteFigure, report.TotalGGR)
	}
	if !finite(figures.TotalGGR) {
		return nil, fmt.Errorf("%w: EMS GGR %v", ErrNonFiniteFigure, figures.TotalGGR)
	}

	result := &entity.ComparisonResult{
		ReportID:      report.ID,
		OperatorName:  report.OperatorName,
		Month:         report.Month,
		Year:          report.Year,
		MatchStatus:   entity.MatchStatusMatched,
		Discrepancies: []entity.Discrepancy{},
		ComparedAt:    e.now(),
	}

	reported := decimal.NewFromFloat(report.TotalGGR)
	ems := decimal.NewFromFloat(figures.TotalGGR)
	diff := ems.Sub(reported)

	discrepancy := entity.Discrepancy{
		Field:       entity.FieldGGR,
		ReportValue: report.TotalGGR,
		EMSValue:    figures.TotalGGR,
		Difference:  diff.InexactFloat64(),
	}

	// A zero report total leaves the percentage undefined, which never matches.
	pct, ok := PercentDifference(reported, ems)
	if !ok {
		result.MatchStatus = entity.MatchStatusMismatch
		result.Discrepancies = append(result.Discrepancies, discrepancy)
		return result, nil
	}

	if pct.LessThanOrEqual(tolerance) {
		return result, nil
	}

	pctFloat := pct.InexactFloat64()
	discrepancy.PercentDifference = &pctFloat
	result.MatchStatus = entity.MatchStatusMismatch
	result.Discrepancies = append(result.Discrepancies, discrepancy)
	return result, nil
}

// PercentDifference returns |ems - report| / |report| * 100, or false when the
// report value is zero.
func PercentDifference(reported, ems decimal.Decimal) (decimal.Decimal, bool) {
	if reported.IsZero() {
		return decimal.Zero, false
	}
	return ems.Sub(reported).Abs().Div(reported.Abs()).Mul(hundred), true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
