package http

import (
	"context"

	"github.com/trazeinos/ibex35-dashboard/internal/history"
	"github.com/trazeinos/ibex35-dashboard/internal/recorder"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// DashboardService defines the dashboard operations the handlers need
type DashboardService interface {
	Dataset(ctx context.Context) (*domain.Dataset, error)
	Pivot(ctx context.Context) (*reshape.Table, *domain.Dataset, error)
	Tickers(ctx context.Context) ([]string, error)
	History(ctx context.Context, ticker string, rng history.Range) (*history.View, error)
	Report(ctx context.Context) (string, error)
}

// Reloader forces a refresh of the dataset and announces the result
type Reloader interface {
	RunOnce(ctx context.Context) (bool, error)
}

// LoadJournal lists recent dataset loads
type LoadJournal interface {
	Recent(ctx context.Context, n int) ([]recorder.LoadEvent, error)
}
