package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/architeacher/items/pkg/logger"
)

// Recovery turns a panic in a handler into a 500 response.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}

				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				log.WithContext(r.Context()).Error().
					Str("error", fmt.Sprintf("%v", rvr)).
					Str("stack", string(debug.Stack())).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("panic recovered")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)

				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":      "INTERNAL_ERROR",
					"message":   "Internal server error",
					"timestamp": time.Now().UTC(),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
