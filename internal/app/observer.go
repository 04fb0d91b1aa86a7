package app

import (
	"context"
	"log/slog"

	"github.com/trazeinos/ibex35-dashboard/internal/dataset"
	"github.com/trazeinos/ibex35-dashboard/internal/infrastructure"
	"github.com/trazeinos/ibex35-dashboard/internal/recorder"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// loadObserver forwards cache activity to the metrics and the load journal
type loadObserver struct {
	metrics  *infrastructure.BusinessMetrics
	recorder recorder.Recorder
	logger   *slog.Logger
}

func newLoadObserver(metrics *infrastructure.BusinessMetrics, rec recorder.Recorder, logger *slog.Logger) *loadObserver {
	return &loadObserver{
		metrics:  metrics,
		recorder: rec,
		logger:   logger.With(slog.String("component", "load_observer")),
	}
}

func (o *loadObserver) OnLoad(ctx context.Context, ev dataset.LoadEvent) {
	o.metrics.OnLoad(ctx, ev)

	if err := o.recorder.RecordLoad(ctx, journalEvent(ev)); err != nil {
		// the journal is informational, a failed write never fails a load
		o.logger.WarnContext(ctx, "failed to record load",
			slog.String("path", ev.Path),
			slog.String("error", err.Error()))
	}
}

func (o *loadObserver) OnCacheAccess(ctx context.Context, hit bool) {
	o.metrics.OnCacheAccess(ctx, hit)
}

func journalEvent(ev dataset.LoadEvent) *recorder.LoadEvent {
	out := &recorder.LoadEvent{
		At:         ev.At,
		Path:       ev.Path,
		Rows:       ev.Rows,
		Tickers:    ev.Tickers,
		Changed:    ev.Changed,
		DurationMS: float64(ev.Duration.Microseconds()) / 1000,
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	} else {
		out.Fingerprint = domain.FormatFingerprint(ev.Fingerprint)
	}
	return out
}
