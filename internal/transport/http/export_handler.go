package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	"github.com/trazeinos/ibex35-dashboard/internal/exporter"
	customMiddleware "github.com/trazeinos/ibex35-dashboard/internal/middleware"
	api "github.com/trazeinos/ibex35-dashboard/pkg/contracts/api/v1"
)

const (
	contentTypeCSV      = "text/csv; charset=utf-8"
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeMarkdown = "text/markdown; charset=utf-8"
)

// ExportHandler serves the pivot and ticker downloads
type ExportHandler struct {
	service      DashboardService
	validator    *customMiddleware.Validator
	bom          bool
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewExportHandler creates an export handler. bom prefixes CSV downloads
// with a UTF-8 byte order mark for spreadsheet applications.
func NewExportHandler(service DashboardService, validator *customMiddleware.Validator, bom bool, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		bom:          bom,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/pivot.csv", h.pivot("csv"))
	r.Get("/pivot.xlsx", h.pivot("xlsx"))
	r.Get("/pivot.md", h.pivot("md"))
	// tickers may contain dots (SAN.MC), so the extension is split off by hand
	r.Get("/ticker/{file}", h.TickerExport)

	return r
}

func (h *ExportHandler) pivot(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := api.PivotExportRequest{Format: format, BOM: h.bom}
		if raw := r.URL.Query().Get("bom"); raw != "" {
			bom, err := strconv.ParseBool(raw)
			if err != nil {
				h.errorHandler.HandleError(w, r, apperrors.ErrValidation("bom", "bom must be true or false"))
				return
			}
			req.BOM = bom
		}
		if err := h.validator.Struct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.PivotExport(w, r, req)
	}
}

// PivotExport writes the pivot table in the requested format
func (h *ExportHandler) PivotExport(w http.ResponseWriter, r *http.Request, req api.PivotExportRequest) {
	table, ds, err := h.service.Pivot(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, ""))
		return
	}

	var buf bytes.Buffer
	var contentType string
	switch req.Format {
	case "csv":
		contentType = contentTypeCSV
		err = exporter.WritePivotCSV(&buf, table, req.BOM)
	case "xlsx":
		contentType = contentTypeXLSX
		err = exporter.WritePivotXLSX(&buf, table)
	case "md":
		contentType = contentTypeMarkdown
		_, err = buf.WriteString(exporter.PivotMarkdown(table))
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "pivot export failed",
			slog.String("format", req.Format),
			slog.String("error", err.Error()),
			slog.String("request_id", customMiddleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := "ibex35_pivot." + req.Format
	if s := ds.Summary(); s.LastDate != "" {
		filename = fmt.Sprintf("ibex35_pivot_%s.%s", s.LastDate, req.Format)
	}
	h.download(w, r, contentType, filename, buf.Bytes())
}

// TickerExport handles GET /api/export/ticker/{ticker}.csv and .md
func (h *ExportHandler) TickerExport(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	dot := strings.LastIndex(file, ".")
	if dot <= 0 {
		h.errorHandler.NotFound(w, r)
		return
	}
	ticker, ext := file[:dot], file[dot+1:]
	if ext != "csv" && ext != "md" {
		h.errorHandler.NotFound(w, r)
		return
	}

	req := api.HistoryRequest{Ticker: ticker, DateRangeRequest: dateRangeFromQuery(r)}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rng, err := parseRange(req.DateRangeRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.History(r.Context(), ticker, rng)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, ticker))
		return
	}

	var buf bytes.Buffer
	contentType := contentTypeMarkdown
	if ext == "csv" {
		contentType = contentTypeCSV
		if err := exporter.WriteHistoryCSV(&buf, view, h.bom); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	} else {
		buf.WriteString(exporter.HistoryMarkdown(view))
	}

	h.download(w, r, contentType, fmt.Sprintf("%s_historico.%s", ticker, ext), buf.Bytes())
}

func (h *ExportHandler) download(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}
}
