package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	customMiddleware "github.com/trazeinos/ibex35-dashboard/internal/middleware"
)

const maxClientLogBytes = 16 << 10

// ClientLogHandler relays browser-side events, such as a lost websocket, into
// the server log
type ClientLogHandler struct {
	validator    *customMiddleware.Validator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(validator *customMiddleware.Validator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ClientLogHandler {
	return &ClientLogHandler{
		validator:    validator,
		logger:       logger.With(slog.String("handler", "client_log")),
		errorHandler: errorHandler,
	}
}

// LogRequest represents a client log entry
type LogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=1000"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"max=200"`
}

// Handle processes POST /api/client-log
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClientLogBytes)).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apperrors.ErrInvalidRequest)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	attrs := []slog.Attr{
		slog.String("client_source", req.Source),
		slog.String("request_id", customMiddleware.GetReqID(r.Context())),
		slog.String("user_agent", r.UserAgent()),
	}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}

	h.logger.LogAttrs(r.Context(), clientLevel(req.Level), req.Message, attrs...)

	render.JSON(w, r, map[string]interface{}{
		"success": true,
	})
}

func clientLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
