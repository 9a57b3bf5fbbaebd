// Package service orchestrates the submission pipeline: normalize, validate,
// fingerprint, duplicate check, rate limit, conditional store write, and
// best-effort notification. The pipeline short-circuits at the first failing
// stage.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/formgate-io/contact-gate/internal/contenthash"
	"github.com/formgate-io/contact-gate/internal/logging"
	"github.com/formgate-io/contact-gate/internal/metrics"
	"github.com/formgate-io/contact-gate/internal/models"
	"github.com/formgate-io/contact-gate/internal/normalizer"
	"github.com/formgate-io/contact-gate/internal/notification"
	"github.com/formgate-io/contact-gate/internal/ratelimit"
	"github.com/formgate-io/contact-gate/internal/repository"
	"github.com/formgate-io/contact-gate/internal/validator"
)

// ErrDuplicate is returned when a submission's content hash matches an
// already stored submission, whether caught by the advisory read or by the
// store's conditional insert.
var ErrDuplicate = errors.New("duplicate submission")

const notificationTimeout = 10 * time.Second

// SubmissionService runs the pipeline. Each Submit call is a stateless unit
// of work; all cross-request state lives in the repository. The injected
// repository and notifier may hold long-lived connections, but no
// submission-derived state leaks between invocations.
type SubmissionService struct {
	repo        repository.Repository
	limits      *ratelimit.Checker
	notifier    notification.Channel
	dedupWindow time.Duration
	logger      *logging.Logger
	now         func() time.Time
}

// NewSubmissionService wires the pipeline. dedupWindow bounds the duplicate
// lookback; zero means any historical match counts.
func NewSubmissionService(
	repo repository.Repository,
	limits *ratelimit.Checker,
	notifier notification.Channel,
	dedupWindow time.Duration,
	logger *logging.Logger,
) *SubmissionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SubmissionService{
		repo:        repo,
		limits:      limits,
		notifier:    notifier,
		dedupWindow: dedupWindow,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit processes one submission end to end and returns the stored record.
// Failure types the caller can rely on: *validator.Error, ErrDuplicate,
// *ratelimit.LimitError. Anything else is an infrastructure fault.
func (s *SubmissionService) Submit(ctx context.Context, req *models.SubmissionRequest, sourceIdentity string) (*models.Submission, error) {
	fields := normalizer.Normalize(req.Name, req.Email, req.Message)

	if err := validator.Validate(fields); err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) {
			for _, field := range verr.Fields() {
				metrics.ValidationFailures.WithLabelValues(field).Inc()
			}
		}
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hash := contenthash.Compute(fields)

	// Advisory duplicate read. The conditional insert below is the
	// authoritative check; this read only avoids burning a rate-limit slot
	// evaluation on an obvious repeat.
	var since time.Time
	if s.dedupWindow > 0 {
		since = s.now().Add(-s.dedupWindow)
	}
	exists, err := s.repo.HasContentHash(ctx, hash, since)
	if err != nil {
		metrics.StoreErrors.Inc()
		metrics.SubmissionsTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		metrics.DuplicatesTotal.Inc()
		metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicate
	}

	if err := s.limits.Check(ctx, sourceIdentity, fields.Email); err != nil {
		var lerr *ratelimit.LimitError
		if errors.As(err, &lerr) {
			metrics.SubmissionsTotal.WithLabelValues("rate_limited").Inc()
			s.logger.InfoContext(ctx, "submission rate limited",
				logging.Scope(string(lerr.Scope)),
				logging.IP(sourceIdentity),
			)
			return nil, lerr
		}
		metrics.StoreErrors.Inc()
		metrics.SubmissionsTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("rate limit check: %w", err)
	}

	sub := &models.Submission{
		ID:             uuid.New().String(),
		Name:           fields.Name,
		Email:          fields.Email,
		Body:           fields.Body,
		ContentHash:    hash,
		SourceIdentity: sourceIdentity,
		CreatedAt:      s.now().UTC(),
	}

	start := time.Now()
	err = s.repo.InsertSubmission(ctx, sub)
	metrics.StoreDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateContent) {
			// Lost the race: a concurrent identical submission committed
			// between the advisory read and this insert.
			metrics.DuplicatesTotal.Inc()
			metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
			return nil, ErrDuplicate
		}
		metrics.StoreErrors.Inc()
		metrics.SubmissionsTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	s.logger.InfoContext(ctx, "submission accepted",
		logging.SubmissionID(sub.ID),
		logging.ContentHash(sub.ContentHash),
		logging.IP(sub.SourceIdentity),
	)

	s.notify(ctx, sub)

	return sub, nil
}

// notify is strictly best-effort: the store write above is the commit point,
// so a failed notification is logged and counted but never surfaced.
func (s *SubmissionService) notify(ctx context.Context, sub *models.Submission) {
	if s.notifier == nil {
		return
	}

	nctx, cancel := context.WithTimeout(ctx, notificationTimeout)
	defer cancel()

	if err := s.notifier.Send(nctx, sub); err != nil {
		metrics.NotificationFailures.Inc()
		s.logger.WarnContext(ctx, "notification failed",
			logging.SubmissionID(sub.ID),
			logging.Channel(s.notifier.Type()),
			logging.Error(err),
		)
		return
	}

	metrics.NotificationsSent.Inc()
}
