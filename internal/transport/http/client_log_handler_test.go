package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	customMiddleware "github.com/trazeinos/ibex35-dashboard/internal/middleware"
)

func TestClientLogHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedLog    string
	}{
		{
			name:           "websocket closed",
			body:           `{"level":"warn","message":"websocket closed","source":"layout","data":{"code":1006}}`,
			expectedStatus: http.StatusOK,
			expectedLog:    "level=WARN msg=\"websocket closed\" handler=client_log client_source=layout",
		},
		{
			name:           "default level",
			body:           `{"message":"page loaded"}`,
			expectedStatus: http.StatusOK,
			expectedLog:    "level=INFO msg=\"page loaded\"",
		},
		{
			name:           "missing message",
			body:           `{"level":"info"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown level",
			body:           `{"level":"fatal","message":"x"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"message":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "oversized body",
			body:           `{"message":"` + strings.Repeat("a", maxClientLogBytes) + `"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
			h := NewClientLogHandler(newTestValidator(), logger, newTestErrorHandler())

			req := httptest.NewRequest(http.MethodPost, "/api/client-log", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			customMiddleware.RequestID(http.HandlerFunc(h.Handle)).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `{"success":true}`, rec.Body.String())
				assert.Contains(t, logs.String(), tt.expectedLog)
			}
		})
	}
}
