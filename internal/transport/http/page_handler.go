package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/trazeinos/ibex35-dashboard/internal/chart"
	"github.com/trazeinos/ibex35-dashboard/internal/config"
	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/internal/history"
	customMiddleware "github.com/trazeinos/ibex35-dashboard/internal/middleware"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	api "github.com/trazeinos/ibex35-dashboard/pkg/contracts/api/v1"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "ticker", "report", "error"}

// PageHandler renders the server-side pages
type PageHandler struct {
	service      DashboardService
	dashboard    config.DashboardConfig
	validator    *customMiddleware.Validator
	pages        map[string]*template.Template
	markdown     goldmark.Markdown
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// tickerPageQuery is the ticker page "sidebar" form
type tickerPageQuery struct {
	Ticker string `query:"ticker" validate:"omitempty,ticker"`
	api.DateRangeRequest
}

type pageBase struct {
	Title   string
	Heading string
	Active  string
	Theme   string
	Dataset *domain.DatasetSummary
}

type pivotCell struct {
	Text  string
	Class string
}

type pivotRow struct {
	Ticker string
	Cells  []pivotCell
}

type indexPage struct {
	pageBase
	Columns    []reshape.Column
	Rows       []pivotRow
	GridHeight int
}

type tickerPage struct {
	pageBase
	Tickers []string
	Query   tickerPageQuery
	View    *history.View
	Chart   chart.Chart
}

type reportPage struct {
	pageBase
	Body template.HTML
}

type errorPage struct {
	pageBase
	Problem *apperrors.ProblemDetails
}

// NewPageHandler parses the embedded templates
func NewPageHandler(service DashboardService, dashboard config.DashboardConfig, validator *customMiddleware.Validator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) (*PageHandler, error) {
	funcs := template.FuncMap{
		"price":   format.Price,
		"percent": format.Percent,
		"sign":    format.SignOf,
		"iso":     isoOrBlank,
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{
		service:      service,
		dashboard:    dashboard,
		validator:    validator,
		pages:        pages,
		markdown:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
	}, nil
}

// Routes returns the page routes
func (h *PageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Get("/ticker", h.Ticker)
	r.Get("/report", h.Report)
	return r
}

func (h *PageHandler) base(active string, ds *domain.Dataset) pageBase {
	b := pageBase{
		Title:   h.dashboard.Title,
		Heading: h.dashboard.Heading,
		Active:  active,
		Theme:   h.dashboard.Theme,
	}
	if ds != nil {
		s := ds.Summary()
		b.Dataset = &s
	}
	return b
}

// Index renders the pivot page
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	table, ds, err := h.service.Pivot(r.Context())
	if err != nil {
		h.renderError(w, r, serviceError(err, ""))
		return
	}

	columns := table.Columns()
	rows := make([]pivotRow, 0, len(table.Tickers))
	for _, row := range table.Rows() {
		cells := make([]pivotCell, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = pivotCell{Text: cellText(columns[i+1], cell), Class: cell.Sign}
		}
		rows = append(rows, pivotRow{Ticker: row.Ticker, Cells: cells})
	}

	h.render(w, r, "index", http.StatusOK, indexPage{
		pageBase:   h.base("index", ds),
		Columns:    columns,
		Rows:       rows,
		GridHeight: h.dashboard.GridHeight,
	})
}

// Ticker renders the single-ticker page. Without a ticker the first one is
// shown.
func (h *PageHandler) Ticker(w http.ResponseWriter, r *http.Request) {
	q := tickerPageQuery{
		Ticker:           r.URL.Query().Get("ticker"),
		DateRangeRequest: dateRangeFromQuery(r),
	}
	if err := h.validator.Struct(q); err != nil {
		h.renderError(w, r, err)
		return
	}
	rng, err := parseRange(q.DateRangeRequest)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	view, err := h.service.History(r.Context(), q.Ticker, rng)
	if err != nil {
		h.renderError(w, r, serviceError(err, q.Ticker))
		return
	}
	ds, err := h.service.Dataset(r.Context())
	if err != nil {
		h.renderError(w, r, serviceError(err, ""))
		return
	}

	points := make([]chart.Point, len(view.Series))
	for i, p := range view.Series {
		points[i] = chart.Point{Date: p.Date, Value: p.Price}
	}

	q.Ticker = view.Ticker
	h.render(w, r, "ticker", http.StatusOK, tickerPage{
		pageBase: h.base("ticker", ds),
		Tickers:  ds.Tickers(),
		Query:    q,
		View:     view,
		Chart:    chart.LineChart(points, h.dashboard.ChartWidth, h.dashboard.ChartHeight),
	})
}

// Report renders the markdown report as HTML
func (h *PageHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		h.renderError(w, r, serviceError(err, ""))
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(report), &buf); err != nil {
		h.renderError(w, r, err)
		return
	}

	// goldmark escapes raw HTML in its default configuration
	h.render(w, r, "report", http.StatusOK, reportPage{
		pageBase: h.base("report", nil),
		Body:     template.HTML(buf.String()),
	})
}

// renderError shows the problem a JSON client would get as a page
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	problem := h.errorHandler.ErrorToProblem(err, r)
	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "page failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", problem.Status),
		slog.String("error", err.Error()),
		slog.String("request_id", customMiddleware.GetReqID(r.Context())))

	h.render(w, r, "error", problem.Status, errorPage{
		pageBase: h.base("", nil),
		Problem:  problem,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name string, status int, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// cellText renders a pivot cell. Nulls are blank; changes carry their sign.
func cellText(col reshape.Column, cell reshape.Cell) string {
	if !cell.Value.Valid {
		return ""
	}
	if col.Kind == reshape.KindChange {
		return fmt.Sprintf("%+.2f", cell.Value.Float64)
	}
	return format.Price(cell.Value.Float64)
}

func isoOrBlank(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return format.ISODate(t)
}
