package http

import (
	"errors"
	"net/http"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/internal/history"
	"github.com/trazeinos/ibex35-dashboard/internal/services"
	api "github.com/trazeinos/ibex35-dashboard/pkg/contracts/api/v1"
)

// serviceError maps service sentinels onto API errors. Loader failures keep
// their *AppError so the error handler can tell corrupted from missing.
func serviceError(err error, ticker string) error {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, services.ErrTickerNotFound):
		return apperrors.TickerNotFound(ticker)
	case errors.Is(err, services.ErrInvalidRange):
		return apperrors.ErrInvalidRange
	case errors.Is(err, services.ErrDatasetUnavailable) && !errors.As(err, &appErr):
		return apperrors.DataUnavailable(err)
	default:
		return err
	}
}

// parseRange converts a validated date range request
func parseRange(req api.DateRangeRequest) (history.Range, error) {
	var rng history.Range
	var err error
	if req.From != "" {
		if rng.From, err = format.ParseISODate(req.From); err != nil {
			return rng, apperrors.ErrValidation("from", "from must be a date in yyyy-mm-dd format")
		}
	}
	if req.To != "" {
		if rng.To, err = format.ParseISODate(req.To); err != nil {
			return rng, apperrors.ErrValidation("to", "to must be a date in yyyy-mm-dd format")
		}
	}
	return rng, nil
}

func dateRangeFromQuery(r *http.Request) api.DateRangeRequest {
	q := r.URL.Query()
	return api.DateRangeRequest{From: q.Get("from"), To: q.Get("to")}
}
