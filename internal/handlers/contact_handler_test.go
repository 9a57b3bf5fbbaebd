package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgate-io/contact-gate/internal/models"
	"github.com/formgate-io/contact-gate/internal/ratelimit"
	"github.com/formgate-io/contact-gate/internal/repository"
	"github.com/formgate-io/contact-gate/internal/service"
)

func newTestHandler(t *testing.T) (*ContactHandler, repository.Repository) {
	t.Helper()
	repo := repository.NewInMemoryRepository()
	limits := ratelimit.NewChecker(repo, time.Hour, 10, 5)
	svc := service.NewSubmissionService(repo, limits, nil, 0, nil)
	return NewContactHandler(svc, repo, nil), repo
}

func postContact(t *testing.T, h *ContactHandler, body map[string]string, sourceIP string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if sourceIP != "" {
		req.Header.Set("X-Forwarded-For", sourceIP)
	}

	rr := httptest.NewRecorder()
	h.HandleContact(rr, req)
	return rr
}

func TestHandleContact_Accepted(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := postContact(t, h, map[string]string{
		"name":    "John Doe",
		"email":   "john@example.com",
		"message": "Hello!",
	}, "203.0.113.1")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.AcceptedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
}

func TestHandleContact_ResubmitIdenticalIsConflict(t *testing.T) {
	h, _ := newTestHandler(t)

	payload := map[string]string{
		"name":    "John Doe",
		"email":   "john@example.com",
		"message": "Hello!",
	}

	first := postContact(t, h, payload, "203.0.113.1")
	require.Equal(t, http.StatusOK, first.Code)

	second := postContact(t, h, payload, "203.0.113.1")
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestHandleContact_MissingName(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := postContact(t, h, map[string]string{
		"name":    "",
		"email":   "john@example.com",
		"message": "Hi",
	}, "203.0.113.1")

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp models.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"name"}, resp.Errors)
}

func TestHandleContact_MalformedEmail(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := postContact(t, h, map[string]string{
		"name":    "A",
		"email":   "not-an-email",
		"message": "Hi",
	}, "203.0.113.1")

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp models.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"email"}, resp.Errors)
}

func TestHandleContact_AllFieldsMissing(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := postContact(t, h, map[string]string{}, "203.0.113.1")

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp models.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"name", "email", "message"}, resp.Errors)
}

func TestHandleContact_SourceRateLimited(t *testing.T) {
	h, _ := newTestHandler(t)

	for i := 0; i < 10; i++ {
		rr := postContact(t, h, map[string]string{
			"name":    fmt.Sprintf("Sender %d", i),
			"email":   fmt.Sprintf("sender%d@example.com", i),
			"message": fmt.Sprintf("message number %d", i),
		}, "203.0.113.1")
		require.Equal(t, http.StatusOK, rr.Code, "submission %d", i+1)
	}

	rr := postContact(t, h, map[string]string{
		"name":    "Late",
		"email":   "late@example.com",
		"message": "one more",
	}, "203.0.113.1")

	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	var resp models.RateLimitResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "sourceIdentity", resp.Scope)
	assert.Greater(t, resp.RetryAfterSeconds, int64(0))
}

func TestHandleContact_EmailRateLimited(t *testing.T) {
	h, _ := newTestHandler(t)

	for i := 0; i < 5; i++ {
		rr := postContact(t, h, map[string]string{
			"name":    "John Doe",
			"email":   "john@example.com",
			"message": fmt.Sprintf("message number %d", i),
		}, fmt.Sprintf("203.0.113.%d", i+1))
		require.Equal(t, http.StatusOK, rr.Code, "submission %d", i+1)
	}

	rr := postContact(t, h, map[string]string{
		"name":    "John Doe",
		"email":   "john@example.com",
		"message": "sixth message",
	}, "198.51.100.1")

	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	var resp models.RateLimitResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "email", resp.Scope)
}

func TestHandleContact_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	h.HandleContact(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleContact_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/contact", nil)
	rr := httptest.NewRecorder()
	h.HandleContact(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleContact_PreflightCORS(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/contact", nil)
	rr := httptest.NewRecorder()
	h.HandleContact(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
}

type failingService struct{}

func (failingService) Submit(ctx context.Context, req *models.SubmissionRequest, sourceIdentity string) (*models.Submission, error) {
	return nil, fmt.Errorf("insert submission: %w", repository.ErrUnavailable)
}

func TestHandleContact_StoreFailureIsInternalError(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	h := NewContactHandler(failingService{}, repo, nil)

	rr := postContact(t, h, map[string]string{
		"name":    "John Doe",
		"email":   "john@example.com",
		"message": "Hello!",
	}, "203.0.113.1")

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error,
		"storage detail must not leak to callers")
}

type readyFailRepo struct {
	*repository.InMemoryRepository
}

func (readyFailRepo) Ping(ctx context.Context) error {
	return errors.New("store unreachable")
}

func TestReady(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReady_StoreDown(t *testing.T) {
	repo := readyFailRepo{repository.NewInMemoryRepository()}
	limits := ratelimit.NewChecker(repo, time.Hour, 10, 5)
	svc := service.NewSubmissionService(repo, limits, nil, 0, nil)
	h := NewContactHandler(svc, repo, nil)

	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
