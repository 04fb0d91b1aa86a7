package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/trazeinos/ibex35-dashboard/internal/exporter"
	"github.com/trazeinos/ibex35-dashboard/internal/history"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// DatasetSource hands out the current dataset. *dataset.Cache satisfies it.
type DatasetSource interface {
	Get(ctx context.Context) (*domain.Dataset, error)
	Path() string
}

// DashboardService provides the dashboard views over the cached dataset
type DashboardService struct {
	source DatasetSource
	title  string
	logger *slog.Logger

	mu         sync.Mutex
	pivot      *reshape.Table
	pivotOf    uint64
	pivotReady bool
}

// NewDashboardService creates a dashboard service. title heads the report.
func NewDashboardService(source DatasetSource, title string, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		source: source,
		title:  title,
		logger: logger.With(slog.String("component", "dashboard_service")),
	}
}

// Dataset returns the current dataset
func (s *DashboardService) Dataset(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.source.Get(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "dataset unavailable",
			slog.String("path", s.source.Path()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return ds, nil
}

// Pivot returns the pivot table of the current dataset. The table is rebuilt
// only when the dataset fingerprint changes; callers must not mutate it.
func (s *DashboardService) Pivot(ctx context.Context) (*reshape.Table, *domain.Dataset, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pivotReady && s.pivotOf == ds.Fingerprint {
		return s.pivot, ds, nil
	}

	table := reshape.Pivot(ds.Observations)
	s.pivot, s.pivotOf, s.pivotReady = table, ds.Fingerprint, true

	s.logger.DebugContext(ctx, "pivot rebuilt",
		slog.String("fingerprint", ds.FingerprintHex()),
		slog.Int("tickers", len(table.Tickers)),
		slog.Int("dates", len(table.Dates)))

	return table, ds, nil
}

// Tickers lists the distinct tickers in ascending order
func (s *DashboardService) Tickers(ctx context.Context) ([]string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Tickers(), nil
}

// History returns the single-ticker view. An empty ticker selects the first
// ticker of the dataset; on an empty dataset the view is empty rather than an
// error.
func (s *DashboardService) History(ctx context.Context, ticker string, rng history.Range) (*history.View, error) {
	if rng.Inverted() {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange,
			rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	}

	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	if ticker == "" {
		if tickers := ds.Tickers(); len(tickers) > 0 {
			ticker = tickers[0]
		}
		return history.NewView(ds.Observations, ticker, rng), nil
	}

	if !ds.HasTicker(ticker) {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	return history.NewView(ds.Observations, ticker, rng), nil
}

// Report renders the dashboard report as markdown
func (s *DashboardService) Report(ctx context.Context) (string, error) {
	table, ds, err := s.Pivot(ctx)
	if err != nil {
		return "", err
	}

	views := make([]*history.View, 0, len(table.Tickers))
	for _, ticker := range table.Tickers {
		views = append(views, history.NewView(ds.Observations, ticker, history.Range{}))
	}

	return exporter.ReportMarkdown(s.title, ds.Summary(), table, views), nil
}
