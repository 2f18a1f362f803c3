package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/garyjia/ggr-reconciler/pkg/numtext"
)

var (
	// ErrMissingFigure is returned when an EMS field is left blank
	ErrMissingFigure = errors.New("figure is required")

	// ErrForbidden is returned when the session role may not perform the operation
	ErrForbidden = errors.New("forbidden")

	// ErrReportNotFound is returned when a report is not in the pending list
	ErrReportNotFound = errors.New("report not found")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// EMS form field names
const (
	FieldTotalGGR      = "totalGGR"
	FieldTotalStake    = "totalStake"
	FieldTotalBetCount = "totalBetCount"
)

// EMSInput holds the figures as the administrator typed them, separators included
type EMSInput struct {
	TotalGGR      string `json:"totalGGR"`
	TotalStake    string `json:"totalStake"`
	TotalBetCount string `json:"totalBetCount"`
}

// FigureError identifies which EMS field failed validation
type FigureError struct {
	Field string
	Err   error
}

func (e *FigureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FigureError) Unwrap() error {
	return e.Err
}

// ParseFigures validates and converts all three EMS fields.
// Every field is required even though only GGR is compared.
func ParseFigures(in EMSInput) (entity.EMSFigures, error) {
	var figures entity.EMSFigures

	fields := []struct {
		name string
		text string
		dst  *float64
	}{
		{FieldTotalGGR, in.TotalGGR, &figures.TotalGGR},
		{FieldTotalStake, in.TotalStake, &figures.TotalStake},
		{FieldTotalBetCount, in.TotalBetCount, &figures.TotalBetCount},
	}

	for _, f := range fields {
		if strings.TrimSpace(numtext.Strip(f.text)) == "" {
			return entity.EMSFigures{}, &FigureError{Field: f.name, Err: ErrMissingFigure}
		}
		v, err := numtext.ParseFloat(f.text)
		if err != nil {
			return entity.EMSFigures{}, &FigureError{Field: f.name, Err: err}
		}
		*f.dst = v
	}

	return figures, nil
}

// authorize checks session expiry and, when roles are given, membership in one of them
func authorize(auth entity.AuthContext, now time.Time, roles ...entity.Role) error {
	if err := auth.Valid(now); err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if auth.Is(r) {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q", ErrForbidden, auth.Role)
}
