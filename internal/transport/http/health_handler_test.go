package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trazeinos/ibex35-dashboard/internal/services"
	"github.com/trazeinos/ibex35-dashboard/internal/shared/testutil"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

type stubSource struct {
	ds  *domain.Dataset
	err error
}

func (s stubSource) Get(context.Context) (*domain.Dataset, error) { return s.ds, s.err }
func (s stubSource) Path() string                                  { return "precios_cierre_bolsa.csv" }

func newHealthHandler(src services.DatasetSource) *HealthHandler {
	logger := testutil.DiscardLogger()
	return NewHealthHandler(services.NewHealthService("1.2.0", src, nil, logger), logger)
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		source         stubSource
		expectedStatus int
		expectedState  string
	}{
		{name: "health", target: "/", expectedStatus: http.StatusOK, expectedState: "ok"},
		{name: "live", target: "/live", expectedStatus: http.StatusOK, expectedState: "alive"},
		{name: "ready", target: "/ready", source: stubSource{ds: sampleDataset()}, expectedStatus: http.StatusOK, expectedState: "ready"},
		{name: "not ready", target: "/ready", source: stubSource{err: errors.New("no such file")}, expectedStatus: http.StatusServiceUnavailable, expectedState: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newHealthHandler(tt.source).Routes(), http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedState, body["status"])
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	rec := serve(http.HandlerFunc(newHealthHandler(stubSource{}).Version), http.MethodGet, "/api/version", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "v1", body["api_version"])
	assert.NotEmpty(t, body["version"])
}
