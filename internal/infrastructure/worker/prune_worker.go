package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pruner discards sessions idle for longer than maxIdle
type Pruner interface {
	Prune(maxIdle time.Duration) int
}

// PruneConfig holds configuration for the workbench prune worker
type PruneConfig struct {
	Interval    time.Duration
	IdleTimeout time.Duration
}

// PruneWorker periodically discards idle reconciliation workbenches
type PruneWorker struct {
	config PruneConfig
	pruner Pruner
	logger *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
	pruned    int
}

// NewPruneWorker creates a prune worker
func NewPruneWorker(config PruneConfig, pruner Pruner, logger *zap.Logger) *PruneWorker {
	return &PruneWorker{
		config: config,
		pruner: pruner,
		logger: logger,
	}
}

// Start begins the prune loop
func (w *PruneWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("prune worker already running")
	}
	if w.config.Interval <= 0 || w.config.IdleTimeout <= 0 {
		return fmt.Errorf("prune worker needs a positive interval and idle timeout")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("PruneWorker started",
		zap.Duration("interval", w.config.Interval),
		zap.Duration("idle_timeout", w.config.IdleTimeout))

	go w.loop(loopCtx, w.done)
	return nil
}

// Stop ends the loop and waits for it to exit
func (w *PruneWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.logger.Info("PruneWorker stopped", zap.Int("pruned_total", w.Pruned()))
	return nil
}

// Name returns the worker name for identification
func (w *PruneWorker) Name() string {
	return "PruneWorker"
}

// Pruned returns how many workbenches the worker has discarded
func (w *PruneWorker) Pruned() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pruned
}

func (w *PruneWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *PruneWorker) runOnce() {
	n := w.pruner.Prune(w.config.IdleTimeout)
	if n == 0 {
		return
	}

	w.mu.Lock()
	w.pruned += n
	w.mu.Unlock()

	w.logger.Info("Pruned idle workbenches", zap.Int("count", n))
}
