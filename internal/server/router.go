package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/formgate-io/contact-gate/internal/handlers"
	"github.com/formgate-io/contact-gate/internal/logging"
	"github.com/formgate-io/contact-gate/internal/middleware"
	"github.com/formgate-io/contact-gate/internal/ratelimit"
)

// NewRouter constructs a ServeMux with the contact API routes registered.
// The throttle wraps only the submission endpoint; health and metrics stay
// reachable when a caller is being throttled.
func NewRouter(h *handlers.ContactHandler, throttle ratelimit.Throttle) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/contact", middleware.Throttle(throttle)(http.HandlerFunc(h.HandleContact)))

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(accessLog(mux))
}

// statusRecorder captures the status code written by the inner handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// accessLog writes one record per request with method, path, status, and
// elapsed time. Sits inside RequestID so every line carries the request ID.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logging.Default().InfoContext(r.Context(), "request handled",
			logging.Method(r.Method),
			logging.Path(r.URL.Path),
			logging.Status(rec.status),
			logging.Duration(time.Since(start).Milliseconds()),
		)
	})
}
