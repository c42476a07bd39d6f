package middleware

import (
	"context"
	"net/http"
	"strings"
)

const skipAccessLogKey contextKey = "skip_access_log"

var defaultHealthEndpoints = []string{"/health", "/ready", "/live"}

// HealthCheckFilter marks probe requests so that the access log can skip them.
type HealthCheckFilter struct {
	healthEndpoints []string
	logHealthChecks bool
}

func NewHealthCheckFilter(logHealthChecks bool) *HealthCheckFilter {
	return &HealthCheckFilter{
		healthEndpoints: defaultHealthEndpoints,
		logHealthChecks: logHealthChecks,
	}
}

func (h *HealthCheckFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.logHealthChecks || !h.isHealthEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), skipAccessLogKey, true)))
	})
}

func (h *HealthCheckFilter) isHealthEndpoint(path string) bool {
	path = strings.TrimSuffix(path, "/")

	for _, endpoint := range h.healthEndpoints {
		if path == endpoint {
			return true
		}
	}

	return false
}

func shouldSkipAccessLog(ctx context.Context) bool {
	skip, ok := ctx.Value(skipAccessLogKey).(bool)

	return ok && skip
}
