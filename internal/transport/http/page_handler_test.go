package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trazeinos/ibex35-dashboard/internal/config"
	"github.com/trazeinos/ibex35-dashboard/internal/exporter"
	"github.com/trazeinos/ibex35-dashboard/internal/history"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	"github.com/trazeinos/ibex35-dashboard/internal/services"
	"github.com/trazeinos/ibex35-dashboard/internal/shared/testutil"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

func newPageRoutes(t *testing.T, svc DashboardService) http.Handler {
	t.Helper()
	h, err := NewPageHandler(svc, config.Default().Dashboard, newTestValidator(), testutil.DiscardLogger(), newTestErrorHandler())
	require.NoError(t, err)
	return h.Routes()
}

func TestPageHandler_Index(t *testing.T) {
	rec := serve(newPageRoutes(t, pivotService()), http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Dashboard IBEX35 Profesional</h1>")
	assert.Contains(t, body, "<title>Dashboard IBEX35</title>")
	assert.Contains(t, body, "01-01-24 €")
	assert.Contains(t, body, `<td class="pinned">SAN</td>`)
	assert.Contains(t, body, `<td class="num negative">-4.81</td>`)
	// html/template escapes the plus sign
	assert.Contains(t, body, `<td class="num positive">&#43;1.99</td>`)
	assert.Contains(t, body, "7 registros")
}

func TestPageHandler_IndexEmpty(t *testing.T) {
	ds := &domain.Dataset{Path: "precios_cierre_bolsa.csv"}
	svc := new(MockDashboardService)
	svc.On("Pivot", mock.Anything).Return(reshape.Pivot(nil), ds, nil)

	rec := serve(newPageRoutes(t, svc), http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No hay datos.")
}

func TestPageHandler_IndexUnavailable(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Pivot", mock.Anything).Return(nil, nil, services.ErrDatasetUnavailable)

	rec := serve(newPageRoutes(t, svc), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "503")
}

func TestPageHandler_Ticker(t *testing.T) {
	ds := sampleDataset()

	t.Run("default ticker", func(t *testing.T) {
		view := history.NewView(ds.Observations, "ITX", history.Range{})
		svc := new(MockDashboardService)
		svc.On("History", mock.Anything, "", history.Range{}).Return(view, nil)
		svc.On("Dataset", mock.Anything).Return(ds, nil)

		rec := serve(newPageRoutes(t, svc), http.MethodGet, "/ticker", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<option value="ITX" selected>ITX</option>`)
		assert.Contains(t, body, `<option value="SAN">SAN</option>`)
		assert.Contains(t, body, "<h2>ITX</h2>")
		assert.Contains(t, body, `value="2024-01-01"`)
		assert.Contains(t, body, "<polyline")
		assert.Contains(t, body, "/api/export/ticker/ITX.csv")
		svc.AssertExpectations(t)
	})

	t.Run("single day shows a dot", func(t *testing.T) {
		rng := history.Range{From: date("2024-01-03"), To: date("2024-01-03")}
		view := history.NewView(ds.Observations, "SAN", rng)
		svc := new(MockDashboardService)
		svc.On("History", mock.Anything, "SAN", rng).Return(view, nil)
		svc.On("Dataset", mock.Anything).Return(ds, nil)

		rec := serve(newPageRoutes(t, svc), http.MethodGet, "/ticker?ticker=SAN&from=2024-01-03&to=2024-01-03", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<circle")
		assert.NotContains(t, rec.Body.String(), "<polyline")
	})

	t.Run("empty range", func(t *testing.T) {
		rng := history.Range{From: date("2023-01-01"), To: date("2023-01-31")}
		view := history.NewView(ds.Observations, "SAN", rng)
		svc := new(MockDashboardService)
		svc.On("History", mock.Anything, "SAN", rng).Return(view, nil)
		svc.On("Dataset", mock.Anything).Return(ds, nil)

		rec := serve(newPageRoutes(t, svc), http.MethodGet, "/ticker?ticker=SAN&from=2023-01-01&to=2023-01-31", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No hay datos para el rango seleccionado.")
	})

	t.Run("invalid date", func(t *testing.T) {
		svc := new(MockDashboardService)

		rec := serve(newPageRoutes(t, svc), http.MethodGet, "/ticker?ticker=SAN&from=31/01/2024", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		svc.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("index ticker", func(t *testing.T) {
		view := history.NewView(indexObservations(), "^IBEX", history.Range{})
		svc := new(MockDashboardService)
		svc.On("History", mock.Anything, "^IBEX", history.Range{}).Return(view, nil)
		svc.On("Dataset", mock.Anything).Return(ds, nil)

		rec := serve(newPageRoutes(t, svc), http.MethodGet, "/ticker?ticker=%5EIBEX", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h2>^IBEX</h2>")
		svc.AssertExpectations(t)
	})

	t.Run("unknown ticker", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("History", mock.Anything, "BBVA", history.Range{}).Return(nil, services.ErrTickerNotFound)

		rec := serve(newPageRoutes(t, svc), http.MethodGet, "/ticker?ticker=BBVA", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "BBVA")
	})
}

func TestPageHandler_Report(t *testing.T) {
	ds := sampleDataset()
	table := reshape.Pivot(ds.Observations)
	views := []*history.View{
		history.NewView(ds.Observations, "ITX", history.Range{}),
		history.NewView(ds.Observations, "SAN", history.Range{}),
	}
	report := exporter.ReportMarkdown("Dashboard IBEX35", ds.Summary(), table, views)

	svc := new(MockDashboardService)
	svc.On("Report", mock.Anything).Return(report, nil)

	rec := serve(newPageRoutes(t, svc), http.MethodGet, "/report", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Dashboard IBEX35</h1>")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "<h2>Latest session</h2>")
}

func TestPageHandler_ReportEscapesRawHTML(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Report", mock.Anything).Return("# Report\n\n<script>alert(1)</script>\n", nil)

	rec := serve(newPageRoutes(t, svc), http.MethodGet, "/report", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
}

func TestCellText(t *testing.T) {
	table := reshape.Pivot(sampleDataset().Observations)
	cols := table.Columns()
	rows := table.Rows()

	assert.Equal(t, "35.10", cellText(cols[1], rows[0].Cells[0]))
	assert.Equal(t, "", cellText(cols[2], rows[0].Cells[1]))
	assert.Equal(t, "+1.99", cellText(cols[4], rows[0].Cells[3]))
	assert.Equal(t, "+0.00", cellText(cols[6], rows[0].Cells[5]))
}
