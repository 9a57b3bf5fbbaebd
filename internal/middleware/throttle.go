package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/formgate-io/contact-gate/internal/metrics"
	"github.com/formgate-io/contact-gate/internal/ratelimit"
)

// Throttle gates requests by client IP before the pipeline runs. Throttle
// backend failures fail open: a broken Redis must not take the endpoint down.
func Throttle(limiter ratelimit.Throttle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), ClientIP(r))
			if err != nil {
				slog.Warn("throttle check failed, allowing request", slog.String("error", err.Error()))
				allowed = true
			}

			if !allowed {
				metrics.ThrottleRejections.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
