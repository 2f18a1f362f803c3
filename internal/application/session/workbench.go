// Package session holds per-user reconciliation state between requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/garyjia/ggr-reconciler/internal/application/service"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/pkg/numtext"
)

var (
	// ErrStaleResult is returned when the selection changed while a comparison was in flight
	ErrStaleResult = errors.New("comparison result is stale")

	// ErrNoReportSelected is returned by Compare before any report is selected
	ErrNoReportSelected = errors.New("no report selected")

	// ErrUnknownField is returned by Input for a field outside the EMS form
	ErrUnknownField = errors.New("unknown field")
)

// Snapshot is a copy of a workbench's visible state
type Snapshot struct {
	ReportID   string                  `json:"reportId"`
	Input      service.EMSInput        `json:"input"`
	Last       *service.CompareOutcome `json:"last,omitempty"`
	Generation uint64                  `json:"generation"`
}

// Workbench is one administrator's reconciliation session.
// Select and Reset start a new generation; results from older generations are dropped.
type Workbench struct {
	svc service.ReconciliationService

	mu         sync.Mutex
	generation uint64
	reportID   string
	input      service.EMSInput
	last       *service.CompareOutcome
}

// NewWorkbench creates an empty workbench
func NewWorkbench(svc service.ReconciliationService) *Workbench {
	return &Workbench{svc: svc}
}

// Select starts working on a report and clears inputs and the previous result
func (w *Workbench) Select(reportID string) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.reportID = reportID
	w.input = service.EMSInput{}
	w.last = nil
	return w.snapshotLocked()
}

// Input applies one edit to a form field and returns the field's new display text.
// Text that is not numeric leaves the field unchanged.
func (w *Workbench) Input(field, text string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	dst, err := w.fieldLocked(field)
	if err != nil {
		return "", err
	}
	*dst = numtext.Apply(*dst, text)
	return *dst, nil
}

// Figures returns the current form text
func (w *Workbench) Figures() service.EMSInput {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// Snapshot returns the current state
func (w *Workbench) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Compare reconciles the selected report with the current form.
// If Select or Reset ran while the call was in flight the outcome is discarded
// and ErrStaleResult returned; the remote side effects still happened.
func (w *Workbench) Compare(ctx context.Context, auth entity.AuthContext) (*service.CompareOutcome, error) {
	w.mu.Lock()
	gen := w.generation
	reportID := w.reportID
	input := w.input
	w.mu.Unlock()

	if reportID == "" {
		return nil, ErrNoReportSelected
	}

	outcome, err := w.svc.Compare(ctx, auth, reportID, input)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.generation != gen {
		return nil, fmt.Errorf("report %s: %w", reportID, ErrStaleResult)
	}
	if err != nil {
		return nil, err
	}
	w.last = outcome
	return outcome, nil
}

// Reset clears the selection, inputs and result
func (w *Workbench) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.reportID = ""
	w.input = service.EMSInput{}
	w.last = nil
}

func (w *Workbench) fieldLocked(field string) (*string, error) {
	switch field {
	case service.FieldTotalGGR:
		return &w.input.TotalGGR, nil
	case service.FieldTotalStake:
		return &w.input.TotalStake, nil
	case service.FieldTotalBetCount:
		return &w.input.TotalBetCount, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

func (w *Workbench) snapshotLocked() Snapshot {
	return Snapshot{
		ReportID:   w.reportID,
		Input:      w.input,
		Last:       w.last,
		Generation: w.generation,
	}
}
