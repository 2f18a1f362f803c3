package port

import (
	"context"

	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
)

// FileStorage defines file storage operations for generated artifacts
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	GetFullPath(relativePath string) string
}

// ComparisonExporter renders a comparison result as a spreadsheet
type ComparisonExporter interface {
	Export(result *entity.ComparisonResult, report *entity.Report) ([]byte, error)
}
