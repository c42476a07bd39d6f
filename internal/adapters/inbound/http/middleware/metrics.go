package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/architeacher/items/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
)

const (
	httpMethodKey     = "http.method"
	httpRouteKey      = "http.route"
	httpStatusCodeKey = "http.status_code"

	httpRequestTotal    = "http_requests_total"
	httpRequestDuration = "http_request_duration_seconds"
	httpResponseSize    = "http_response_size_bytes"

	unmatchedRoute = "unmatched"
)

type MetricsMiddleware struct {
	metricsClient metrics.Client
}

func NewMetricsMiddleware(metricsClient metrics.Client) *MetricsMiddleware {
	return &MetricsMiddleware{metricsClient: metricsClient}
}

func (m *MetricsMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := NewFlushableResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		attrs := []attribute.KeyValue{
			attribute.String(httpMethodKey, r.Method),
			attribute.String(httpRouteKey, routePattern(r)),
			attribute.String(httpStatusCodeKey, strconv.Itoa(wrapped.StatusCode())),
		}

		m.metricsClient.Inc(r.Context(), httpRequestTotal, int64(1), attrs...)
		m.metricsClient.Inc(r.Context(), httpRequestDuration, time.Since(start).Seconds(), attrs...)
		m.metricsClient.Inc(r.Context(), httpResponseSize, int64(wrapped.BytesWritten()), attrs...)
	})
}

// routePattern keeps item ids out of the metric attributes.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return unmatchedRoute
}
