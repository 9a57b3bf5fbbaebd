package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// headerRequestID is the wire header carrying the request ID through the
// front-door proxy and back out in responses.
const headerRequestID = "X-Request-ID"

type contextKey string

// RequestIDKey carries the per-request ID through the context.
const RequestIDKey = contextKey("request-id")

// RequestID tags every request with an ID so log lines for one submission
// can be correlated. An ID supplied by the caller is echoed back unchanged;
// otherwise a fresh UUID is minted. The ID is set on the response header
// before the inner handler runs, so throttled and failed requests carry it
// too.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored in ctx, or "" when absent.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
