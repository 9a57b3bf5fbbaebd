package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formgate-io/contact-gate/internal/logging"
	"github.com/formgate-io/contact-gate/internal/middleware"
	"github.com/formgate-io/contact-gate/internal/models"
	"github.com/formgate-io/contact-gate/internal/ratelimit"
	"github.com/formgate-io/contact-gate/internal/repository"
	"github.com/formgate-io/contact-gate/internal/service"
	"github.com/formgate-io/contact-gate/internal/validator"
)

// maxBodyBytes caps the request body; contact messages are small.
const maxBodyBytes = 64 * 1024

// SubmissionService is the pipeline surface the handler depends on.
type SubmissionService interface {
	Submit(ctx context.Context, req *models.SubmissionRequest, sourceIdentity string) (*models.Submission, error)
}

// ContactHandler exposes the submission pipeline over HTTP.
type ContactHandler struct {
	service SubmissionService
	repo    repository.Repository
	logger  *logging.Logger
}

// NewContactHandler builds the handler. repo is used only for readiness.
func NewContactHandler(svc SubmissionService, repo repository.Repository, logger *logging.Logger) *ContactHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContactHandler{
		service: svc,
		repo:    repo,
		logger:  logger,
	}
}

// HandleContact implements POST /contact. Outcomes map to a fixed status
// table: accepted 200, validation 400, duplicate 409, rate limited 429,
// store fault 500.
func (h *ContactHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req models.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	defer r.Body.Close()

	sourceIdentity := middleware.ClientIP(r)

	sub, err := h.service.Submit(r.Context(), &req, sourceIdentity)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AcceptedResponse{ID: sub.ID})
}

// writeFailure is the outcome-to-result table for failing pipeline stages.
func (h *ContactHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validator.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse{Errors: verr.Fields()})
		return
	}

	if errors.Is(err, service.ErrDuplicate) {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "duplicate submission"})
		return
	}

	var lerr *ratelimit.LimitError
	if errors.As(err, &lerr) {
		writeJSON(w, http.StatusTooManyRequests, models.RateLimitResponse{
			RetryAfterSeconds: lerr.RetryAfterSeconds(),
			Scope:             string(lerr.Scope),
		})
		return
	}

	// Store faults and anything unclassified collapse to a generic internal
	// error so storage detail never leaks to callers.
	h.logger.ErrorContext(r.Context(), "submission failed",
		logging.Path(r.URL.Path),
		logging.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
}

// Health reports liveness.
func (h *ContactHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready reports readiness; the store must be reachable to accept traffic.
func (h *ContactHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
