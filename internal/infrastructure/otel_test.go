package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/trazeinos/ibex35-dashboard/internal/config"
	"github.com/trazeinos/ibex35-dashboard/internal/dataset"
	"github.com/trazeinos/ibex35-dashboard/internal/shared/testutil"
)

func TestInitializeOTel_MetricsEndpoint(t *testing.T) {
	providers, err := InitializeOTel(nil, testutil.DiscardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.OnCacheAccess(context.Background(), true)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cache_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestInitializeOTel_Disabled(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{ServiceName: "test", TraceExporter: "none"}, "v0")

	providers, err := InitializeOTel(cfg, testutil.DiscardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Meter)

	_, err = CreateBusinessMetrics(providers.Meter)
	assert.NoError(t, err)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, testutil.DiscardLogger())
	assert.Error(t, err)
}

func TestBusinessMetrics_DatasetObserver(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	var observer dataset.Observer = metrics
	ctx := context.Background()
	observer.OnLoad(ctx, dataset.LoadEvent{Rows: 8, Tickers: 3, Changed: true, Duration: 5 * time.Millisecond})
	observer.OnLoad(ctx, dataset.LoadEvent{Changed: false, Duration: time.Millisecond})
	observer.OnLoad(ctx, dataset.LoadEvent{Err: errors.New("missing"), Duration: time.Millisecond})
	observer.OnCacheAccess(ctx, true)
	observer.OnCacheAccess(ctx, false)
	observer.OnCacheAccess(ctx, true)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	loads := sumByResult(t, rm, "dataset_loads_total")
	assert.Equal(t, map[string]int64{"success": 1, "unchanged": 1, "error": 1}, loads)

	cache := sumByResult(t, rm, "cache_requests_total")
	assert.Equal(t, map[string]int64{"hit": 2, "miss": 1}, cache)

	rows := findMetric(t, rm, "dataset_rows").Data.(metricdata.Gauge[int64])
	require.Len(t, rows.DataPoints, 1)
	assert.Equal(t, int64(8), rows.DataPoints[0].Value)
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	RecordError(context.Background(), errors.New("ignored"))
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Metrics{}
}

func sumByResult(t *testing.T, rm metricdata.ResourceMetrics, name string) map[string]int64 {
	t.Helper()
	sum, ok := findMetric(t, rm, name).Data.(metricdata.Sum[int64])
	require.True(t, ok)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("result"))
		out[v.AsString()] = dp.Value
	}
	return out
}
