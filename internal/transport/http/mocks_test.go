package http

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	"github.com/trazeinos/ibex35-dashboard/internal/history"
	customMiddleware "github.com/trazeinos/ibex35-dashboard/internal/middleware"
	"github.com/trazeinos/ibex35-dashboard/internal/recorder"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	"github.com/trazeinos/ibex35-dashboard/internal/shared/testutil"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Dataset(ctx context.Context) (*domain.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDashboardService) Pivot(ctx context.Context) (*reshape.Table, *domain.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*reshape.Table), args.Get(1).(*domain.Dataset), args.Error(2)
}

func (m *MockDashboardService) Tickers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDashboardService) History(ctx context.Context, ticker string, rng history.Range) (*history.View, error) {
	args := m.Called(ctx, ticker, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.View), args.Error(1)
}

func (m *MockDashboardService) Report(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockReloader struct {
	mock.Mock
}

func (m *MockReloader) RunOnce(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Recent(ctx context.Context, n int) ([]recorder.LoadEvent, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recorder.LoadEvent), args.Error(1)
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// sampleDataset mirrors testutil.SampleCSV after parsing
func sampleDataset() *domain.Dataset {
	return &domain.Dataset{
		Path:        "precios_cierre_bolsa.csv",
		Fingerprint: 0x1234abcd,
		LoadedAt:    time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC),
		Observations: []domain.Observation{
			{Ticker: "SAN", Fecha: date("2024-01-01"), Hora: "17:35:00", Precio: null.FloatFrom(3.80)},
			{Ticker: "SAN", Fecha: date("2024-01-02"), Hora: "12:00:00", Precio: null.FloatFrom(3.90)},
			{Ticker: "SAN", Fecha: date("2024-01-02"), Hora: "17:35:00", Precio: null.FloatFrom(3.95)},
			{Ticker: "SAN", Fecha: date("2024-01-03"), Hora: "17:35:00", Precio: null.FloatFrom(3.76)},
			{Ticker: "ITX", Fecha: date("2024-01-01"), Hora: "17:35:00", Precio: null.FloatFrom(35.10)},
			{Ticker: "ITX", Fecha: date("2024-01-02"), Hora: "17:35:00", Precio: null.FloatFrom(35.80)},
			{Ticker: "ITX", Fecha: date("2024-01-03"), Hora: "17:35:00", Precio: null.FloatFrom(35.80)},
		},
	}
}

func newTestErrorHandler() *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(testutil.DiscardLogger(), false)
}

func newTestValidator() *customMiddleware.Validator {
	return customMiddleware.NewValidator()
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("atoi %q: %v", s, err)
	}
	return n
}

func indexObservations() []domain.Observation {
	return []domain.Observation{
		{Ticker: "^IBEX", Fecha: date("2024-01-01"), Hora: "17:35:00", Precio: null.FloatFrom(10100.5)},
		{Ticker: "^IBEX", Fecha: date("2024-01-02"), Hora: "17:35:00", Precio: null.FloatFrom(10150.25)},
	}
}
