package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
)

// ReportCatalog caches the pending report list fetched from the reporting service.
// Reports handed out are shared and must be treated as read-only.
type ReportCatalog struct {
	api    port.ReportingAPI
	logger Logger
	now    func() time.Time

	mu       sync.RWMutex
	reports  []*entity.Report
	byID     map[string]*entity.Report
	loaded   bool
	loadedAt time.Time
}

// NewReportCatalog creates an empty catalog; the first read loads it
func NewReportCatalog(api port.ReportingAPI, logger Logger) *ReportCatalog {
	return &ReportCatalog{
		api:    api,
		logger: logger,
		now:    time.Now,
		byID:   make(map[string]*entity.Report),
	}
}

// Pending returns the cached pending list, loading it on first use
func (c *ReportCatalog) Pending(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error) {
	c.mu.RLock()
	if c.loaded {
		out := append([]*entity.Report(nil), c.reports...)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	return c.Reload(ctx, auth)
}

// Reload refetches the pending list. On failure the previous list is kept.
func (c *ReportCatalog) Reload(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error) {
	reports, err := c.api.FetchPendingReports(ctx, auth)
	if err != nil {
		c.logger.Error("Failed to fetch pending reports", "error", err)
		return nil, fmt.Errorf("fetch pending reports: %w", err)
	}

	byID := make(map[string]*entity.Report, len(reports))
	kept := make([]*entity.Report, 0, len(reports))
	for _, r := range reports {
		if r == nil || r.ID == "" {
			continue
		}
		byID[r.ID] = r
		kept = append(kept, r)
	}

	c.mu.Lock()
	c.reports = kept
	c.byID = byID
	c.loaded = true
	c.loadedAt = c.now()
	c.mu.Unlock()

	c.logger.Info("Pending reports loaded", "count", len(kept))
	return append([]*entity.Report(nil), kept...), nil
}

// Find looks up a report by ID, reloading once if it is not cached
func (c *ReportCatalog) Find(ctx context.Context, auth entity.AuthContext, reportID string) (*entity.Report, error) {
	if r := c.lookup(reportID); r != nil {
		return r, nil
	}

	if _, err := c.Reload(ctx, auth); err != nil {
		return nil, err
	}

	if r := c.lookup(reportID); r != nil {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrReportNotFound, reportID)
}

// Invalidate forces the next read to refetch
func (c *ReportCatalog) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// LoadedAt returns when the list was last fetched
func (c *ReportCatalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func (c *ReportCatalog) lookup(reportID string) *entity.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil
	}
	return c.byID[reportID]
}
