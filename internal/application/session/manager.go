package session

import (
	"sync"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/application/service"
)

type entry struct {
	workbench *Workbench
	lastUsed  time.Time
}

// Manager keeps one Workbench per user
type Manager struct {
	svc service.ReconciliationService
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager creates a workbench manager
func NewManager(svc service.ReconciliationService) *Manager {
	return &Manager{
		svc:     svc,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the user's workbench, creating it on first use
func (m *Manager) Get(userID string) *Workbench {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		e = &entry{workbench: NewWorkbench(m.svc)}
		m.entries[userID] = e
	}
	e.lastUsed = m.now()
	return e.workbench
}

// Drop discards the user's workbench
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	delete(m.entries, userID)
	m.mu.Unlock()
}

// Prune discards workbenches idle for longer than maxIdle and returns how many were removed
func (m *Manager) Prune(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	removed := 0
	for id, e := range m.entries {
		if e.lastUsed.Before(cutoff) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live workbenches
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
