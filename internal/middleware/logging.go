package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skyline/opsboard/internal/logging"
)

// Logging writes one structured line per request once it has completed.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		// Claims are attached further down the chain, so the user is not known here.
		logging.WithRequest(RequestID(r.Context()), "", endpoint).Infow("HTTP request completed",
			"method", r.Method,
			"status_code", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
