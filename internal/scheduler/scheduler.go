// Package scheduler periodically checks the price file for changes and
// tells connected browsers when a new version has been loaded.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/trazeinos/ibex35-dashboard/internal/infrastructure"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/events"
)

// Refresher is the part of the dataset cache the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
	Current() *domain.Dataset
	Path() string
}

// Broadcaster pushes events to connected clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, msgType events.MessageType, data interface{}) error
}

// Scheduler runs the refresh job on a cron schedule.
type Scheduler struct {
	cron        *cron.Cron
	refresher   Refresher
	broadcaster Broadcaster
	logger      *slog.Logger
	ctx         context.Context

	mu      sync.Mutex
	lastErr string
}

// New creates a scheduler. broadcaster may be nil.
func New(ctx context.Context, refresher Refresher, broadcaster Broadcaster, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher:   refresher,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "scheduler")),
		ctx:         ctx,
	}
}

// Register installs the refresh job. An empty schedule leaves the scheduler
// without jobs, which disables periodic refresh.
func (s *Scheduler) Register(schedule string) error {
	if schedule == "" {
		s.logger.Info("periodic refresh disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return fmt.Errorf("register refresh job %q: %w", schedule, err)
	}
	s.logger.Info("refresh job registered", slog.String("schedule", schedule))
	return nil
}

// Start starts the cron loop
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx := infrastructure.EnsureTraceID(s.ctx)
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Debug("scheduled refresh failed", slog.String("error", err.Error()))
	}
}

// RunOnce checks the file now. When the content changed every client is
// told to reload; a failure is announced once until the next success.
func (s *Scheduler) RunOnce(ctx context.Context) (bool, error) {
	changed, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.reportError(ctx, err)
		return false, err
	}

	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	if !changed {
		return false, nil
	}

	ds := s.refresher.Current()
	s.logger.InfoContext(ctx, "dataset changed",
		slog.String("path", s.refresher.Path()),
		slog.String("fingerprint", ds.FingerprintHex()),
		slog.Int("rows", ds.Len()))

	s.broadcast(ctx, events.MessageTypeDatasetUpdated, events.DatasetUpdatedEvent{
		Path:        ds.Path,
		Fingerprint: ds.FingerprintHex(),
		Rows:        ds.Len(),
		Tickers:     len(ds.Tickers()),
		LoadedAt:    ds.LoadedAt,
	})
	return true, nil
}

func (s *Scheduler) reportError(ctx context.Context, err error) {
	s.mu.Lock()
	repeated := s.lastErr == err.Error()
	s.lastErr = err.Error()
	s.mu.Unlock()

	if repeated {
		return
	}
	s.logger.WarnContext(ctx, "dataset refresh failed, keeping previous version",
		slog.String("path", s.refresher.Path()),
		slog.String("error", err.Error()))
	s.broadcast(ctx, events.MessageTypeDatasetError, events.DatasetErrorEvent{
		Path:    s.refresher.Path(),
		Message: err.Error(),
	})
}

func (s *Scheduler) broadcast(ctx context.Context, t events.MessageType, data interface{}) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Broadcast(ctx, t, data); err != nil {
		s.logger.WarnContext(ctx, "broadcast failed", slog.String("type", string(t)), slog.String("error", err.Error()))
	}
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
