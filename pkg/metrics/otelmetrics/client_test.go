package otelmetrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics"
	"github.com/architeacher/items/pkg/metrics/otelmetrics"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestClientRecordsCountersAndHistograms(t *testing.T) {
	t.Parallel()

	client := otelmetrics.New(nil, metrics.Descriptors{
		"cache_aside.hits": {Description: "cache hits", Unit: "1"},
	}, logger.NewTestLogger())

	t.Cleanup(func() {
		require.NoError(t, client.Shutdown(t.Context()))
	})

	client.Inc(t.Context(), "cache_aside.hits", int64(1), attribute.String("key_space", "item"))
	client.Inc(t.Context(), "cache_aside.hits", 2, attribute.String("key_space", "item"))
	client.Inc(t.Context(), "queries.getitemquery.duration", 0.25)
	client.Inc(t.Context(), "ignored", "not a number")

	rm, err := client.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, rm.ScopeMetrics, 1)

	found := make(map[string]metricdata.Metrics)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		found[m.Name] = m
	}

	require.Contains(t, found, "cache_aside.hits")
	require.Contains(t, found, "queries.getitemquery.duration")
	require.NotContains(t, found, "ignored")

	sum, ok := found["cache_aside.hits"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	require.Equal(t, int64(3), sum.DataPoints[0].Value)
	require.Equal(t, "cache hits", found["cache_aside.hits"].Description)
}

func TestClientHandlerServesJSON(t *testing.T) {
	t.Parallel()

	client := otelmetrics.New(nil, nil, logger.NewTestLogger())
	client.Inc(t.Context(), "http.requests.total", int64(1))

	rec := httptest.NewRecorder()
	client.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "http.requests.total")
}
