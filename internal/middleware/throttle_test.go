package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubThrottle struct {
	allowed bool
	err     error
}

func (s stubThrottle) Allow(ctx context.Context, key string) (bool, error) {
	return s.allowed, s.err
}

func (s stubThrottle) Close() error { return nil }

func TestThrottle_Allows(t *testing.T) {
	called := false
	handler := Throttle(stubThrottle{allowed: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/contact", nil))

	if !called {
		t.Error("allowed request did not reach handler")
	}
}

func TestThrottle_Blocks(t *testing.T) {
	handler := Throttle(stubThrottle{allowed: false})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("blocked request reached handler")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/contact", nil))

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestThrottle_FailsOpenOnBackendError(t *testing.T) {
	called := false
	handler := Throttle(stubThrottle{err: errors.New("redis down")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/contact", nil))

	if !called {
		t.Error("request should pass when the throttle backend fails")
	}
}
