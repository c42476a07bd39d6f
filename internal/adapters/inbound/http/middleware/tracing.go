package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts a server span per request.
func Tracer(serviceName string, tracerProvider trace.TracerProvider) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(
		serviceName,
		otelhttp.WithTracerProvider(tracerProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
