package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/formgate-io/contact-gate/internal/handlers"
	"github.com/formgate-io/contact-gate/internal/logging"
	"github.com/formgate-io/contact-gate/internal/ratelimit"
	"github.com/formgate-io/contact-gate/internal/repository"
	"github.com/formgate-io/contact-gate/internal/service"
)

func newTestRouter(t *testing.T, throttle ratelimit.Throttle) http.Handler {
	t.Helper()
	repo := repository.NewInMemoryRepository()
	limits := ratelimit.NewChecker(repo, time.Hour, 10, 5)
	svc := service.NewSubmissionService(repo, limits, nil, 0, nil)
	handler := handlers.NewContactHandler(svc, repo, nil)
	return NewRouter(handler, throttle)
}

func TestRouter_ContactEndpoint(t *testing.T) {
	router := newTestRouter(t, ratelimit.NoOpThrottle{})

	body := []byte(`{"name":"John Doe","email":"john@example.com","message":"Hello!"}`)
	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("/contact returned %d, want 200", rr.Code)
	}
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t, ratelimit.NoOpThrottle{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("/healthz returned %d, want 200", rr.Code)
	}
}

func TestRouter_ReadyEndpoint(t *testing.T) {
	router := newTestRouter(t, ratelimit.NoOpThrottle{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("/readyz returned %d, want 200", rr.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, ratelimit.NoOpThrottle{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("/metrics returned %d, want 200", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("/metrics returned empty body")
	}
}

func TestRouter_NotFoundEndpoint(t *testing.T) {
	router := newTestRouter(t, ratelimit.NoOpThrottle{})

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("/nonexistent returned %d, want 404", rr.Code)
	}
}

func TestRouter_RequestIDMiddleware(t *testing.T) {
	router := newTestRouter(t, ratelimit.NoOpThrottle{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set by middleware")
	}
}

func TestRouter_AccessLog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	logging.SetDefault(logging.NewWithWriter(&buf, slog.LevelInfo, "json"))
	defer slog.SetDefault(prev)

	router := newTestRouter(t, ratelimit.NoOpThrottle{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	out := buf.String()
	for _, want := range []string{
		`"msg":"request handled"`,
		`"method":"GET"`,
		`"path":"/healthz"`,
		`"status":200`,
		`"duration_ms"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("access log missing %s, got %s", want, out)
		}
	}
}

func TestRouter_ThrottleGatesContactOnly(t *testing.T) {
	// A throttle of one request per window blocks the second submission but
	// must never block health or metrics.
	router := newTestRouter(t, ratelimit.NewLocalThrottle(1, time.Minute))

	body := []byte(`{"name":"John Doe","email":"john@example.com","message":"Hello!"}`)
	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body)))
	if first.Code != http.StatusOK {
		t.Fatalf("first /contact returned %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body)))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("throttled /contact returned %d, want 429", second.Code)
	}

	health := httptest.NewRecorder()
	router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if health.Code != http.StatusOK {
		t.Errorf("/healthz under throttle returned %d, want 200", health.Code)
	}
}
