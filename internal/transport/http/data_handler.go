package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/trazeinos/ibex35-dashboard/internal/config"
	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	customMiddleware "github.com/trazeinos/ibex35-dashboard/internal/middleware"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	api "github.com/trazeinos/ibex35-dashboard/pkg/contracts/api/v1"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// PivotResponse is the body of GET /api/data/pivot
type PivotResponse struct {
	Status  string                `json:"status"`
	Dataset domain.DatasetSummary `json:"dataset"`
	reshape.TableView
}

// DataHandler handles the dashboard data API with RFC 7807 errors
type DataHandler struct {
	service      DashboardService
	reloader     Reloader
	journal      LoadJournal
	validator    *customMiddleware.Validator
	grid         reshape.GridOptions
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewDataHandler creates a new data handler. reloader and journal may be nil,
// which disables POST /reload and empties GET /loads.
func NewDataHandler(
	service DashboardService,
	reloader Reloader,
	journal LoadJournal,
	grid reshape.GridOptions,
	validator *customMiddleware.Validator,
	logger *slog.Logger,
	errorHandler *apperrors.ErrorHandler,
) *DataHandler {
	return &DataHandler{
		service:      service,
		reloader:     reloader,
		journal:      journal,
		validator:    validator,
		grid:         grid,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes. adminAuth guards the reload endpoint.
func (h *DataHandler) Routes(adminAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/tickers", h.GetTickers)
	r.Get("/pivot", h.GetPivot)
	r.Get("/loads", h.GetLoads)
	r.Get("/ticker/{ticker}/history", h.GetHistory)

	if adminAuth != nil {
		r.With(adminAuth).Post("/reload", h.Reload)
	} else {
		r.Post("/reload", h.Reload)
	}

	return r
}

// GetTickers handles GET /api/data/tickers
func (h *DataHandler) GetTickers(w http.ResponseWriter, r *http.Request) {
	reqID := customMiddleware.GetReqID(r.Context())

	tickers, err := h.service.Tickers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get tickers",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, serviceError(err, ""))
		return
	}

	render.JSON(w, r, api.DataResponse{
		Status: "success",
		Data:   tickers,
		Count:  len(tickers),
	})
}

// GetPivot handles GET /api/data/pivot. The response carries the dataset
// fingerprint as ETag.
func (h *DataHandler) GetPivot(w http.ResponseWriter, r *http.Request) {
	reqID := customMiddleware.GetReqID(r.Context())

	table, ds, err := h.service.Pivot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build pivot",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, serviceError(err, ""))
		return
	}

	etag := datasetETag(ds)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.logger.DebugContext(r.Context(), "serving pivot",
		slog.String("request_id", reqID),
		slog.Int("tickers", len(table.Tickers)),
		slog.Int("dates", len(table.Dates)))

	render.JSON(w, r, PivotResponse{
		Status:    "success",
		Dataset:   ds.Summary(),
		TableView: table.View(h.grid),
	})
}

// GetHistory handles GET /api/data/ticker/{ticker}/history?from=&to=
func (h *DataHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	reqID := customMiddleware.GetReqID(r.Context())

	req := api.HistoryRequest{
		Ticker:           chi.URLParam(r, "ticker"),
		DateRangeRequest: dateRangeFromQuery(r),
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rng, err := parseRange(req.DateRangeRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.History(r.Context(), req.Ticker, rng)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to get history",
			slog.String("ticker", req.Ticker),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, serviceError(err, req.Ticker))
		return
	}

	render.JSON(w, r, view)
}

// GetLoads handles GET /api/data/loads?limit=
func (h *DataHandler) GetLoads(w http.ResponseWriter, r *http.Request) {
	req := api.LoadsRequest{Limit: config.RecentLoadsLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apperrors.ErrValidation("limit", "limit must be an integer"))
			return
		}
		req.Limit = n
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if h.journal == nil {
		render.JSON(w, r, api.DataResponse{Status: "success", Data: []interface{}{}, Count: 0})
		return
	}

	loads, err := h.journal.Recent(r.Context(), req.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read load journal",
			slog.String("error", err.Error()),
			slog.String("request_id", customMiddleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, apperrors.NewStorageError("failed to read load journal", err))
		return
	}

	render.JSON(w, r, api.DataResponse{
		Status: "success",
		Data:   loads,
		Count:  len(loads),
	})
}

// Reload handles POST /api/data/reload
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := customMiddleware.GetReqID(r.Context())

	if h.reloader == nil {
		h.errorHandler.HandleError(w, r, apperrors.ErrServiceUnavailable)
		return
	}

	changed, err := h.reloader.RunOnce(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, ""))
		return
	}

	ds, err := h.service.Dataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, ""))
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", reqID),
		slog.Bool("changed", changed),
		slog.String("fingerprint", ds.FingerprintHex()))

	render.JSON(w, r, api.ReloadResponse{
		Status:  "success",
		Changed: changed,
		Dataset: ds.Summary(),
		At:      time.Now().UTC(),
	})
}

func datasetETag(ds *domain.Dataset) string {
	return `"` + ds.FingerprintHex() + `"`
}

// etagMatches implements the If-None-Match comparison. Weak validators
// compare equal to their strong form.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
