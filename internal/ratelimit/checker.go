// Package ratelimit enforces the per-scope submission ceilings and the
// coarse per-IP request throttle.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/formgate-io/contact-gate/internal/metrics"
	"github.com/formgate-io/contact-gate/internal/repository"
)

// Scope identifies which ceiling a submission breached.
type Scope string

const (
	ScopeSource Scope = "sourceIdentity"
	ScopeEmail  Scope = "email"
)

// LimitError reports a breached ceiling and how long the caller should wait
// for the oldest counted submission to exit the window.
type LimitError struct {
	Scope      Scope
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Scope, e.RetryAfter)
}

// RetryAfterSeconds rounds the retry hint up to whole seconds, minimum one.
func (e *LimitError) RetryAfterSeconds() int64 {
	secs := int64((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Checker counts prior submissions per scope over a sliding window. The
// count-then-insert sequence is not linearizable: concurrent submissions
// near a ceiling may transiently both pass. The store's conditional insert
// remains strict regardless.
type Checker struct {
	repo        repository.Repository
	window      time.Duration
	sourceLimit int
	emailLimit  int
	now         func() time.Time
}

// NewChecker builds a Checker over repo with the given window and ceilings.
func NewChecker(repo repository.Repository, window time.Duration, sourceLimit, emailLimit int) *Checker {
	return &Checker{
		repo:        repo,
		window:      window,
		sourceLimit: sourceLimit,
		emailLimit:  emailLimit,
		now:         time.Now,
	}
}

// Check evaluates both ceilings and reports the first breached one,
// deterministically checking sourceIdentity before email. Returns a
// *LimitError when a ceiling is reached, nil when the submission may proceed.
func (c *Checker) Check(ctx context.Context, source, email string) error {
	now := c.now()
	since := now.Add(-c.window)

	count, oldest, err := c.repo.CountBySourceIdentity(ctx, source, since)
	if err != nil {
		return fmt.Errorf("count by source identity: %w", err)
	}
	if count >= c.sourceLimit {
		metrics.RateLimitHits.WithLabelValues(string(ScopeSource)).Inc()
		return &LimitError{Scope: ScopeSource, RetryAfter: c.retryAfter(now, oldest)}
	}

	count, oldest, err = c.repo.CountByEmail(ctx, email, since)
	if err != nil {
		return fmt.Errorf("count by email: %w", err)
	}
	if count >= c.emailLimit {
		metrics.RateLimitHits.WithLabelValues(string(ScopeEmail)).Inc()
		return &LimitError{Scope: ScopeEmail, RetryAfter: c.retryAfter(now, oldest)}
	}

	return nil
}

// retryAfter is the time until the oldest counted submission leaves the
// window. oldest is zero only if the ceiling is configured as zero.
func (c *Checker) retryAfter(now, oldest time.Time) time.Duration {
	if oldest.IsZero() {
		return c.window
	}
	d := oldest.Add(c.window).Sub(now)
	if d < 0 {
		d = 0
	}
	return d
}
