package repository

import (
	"context"
	"errors"
	"time"

	"github.com/formgate-io/contact-gate/internal/models"
)

var (
	// ErrDuplicateContent is returned when a conditional insert finds an
	// existing submission with the same content hash. The insert is the
	// authoritative duplicate check; the advisory HasContentHash read that
	// precedes it is inherently racy.
	ErrDuplicateContent = errors.New("submission with identical content already exists")

	// ErrUnavailable wraps infrastructure failures so callers can collapse
	// them to a generic internal error without leaking storage detail.
	ErrUnavailable = errors.New("store unavailable")
)

// Repository persists submissions and answers the history queries the
// duplicate and rate-limit checks need. Implementations must support an
// atomic insert-if-absent keyed on content hash.
type Repository interface {
	// InsertSubmission writes sub only if no existing submission carries the
	// same content hash. Returns ErrDuplicateContent when the condition
	// fails. A single attempt per invocation; retry policy belongs upstream.
	InsertSubmission(ctx context.Context, sub *models.Submission) error

	// HasContentHash reports whether any submission with the given hash was
	// created at or after since. A zero since means any historical match.
	HasContentHash(ctx context.Context, hash string, since time.Time) (bool, error)

	// CountBySourceIdentity returns the number of submissions from source
	// created at or after since, and the creation time of the oldest of
	// them (zero when the count is zero).
	CountBySourceIdentity(ctx context.Context, source string, since time.Time) (int, time.Time, error)

	// CountByEmail is CountBySourceIdentity scoped to the sender address.
	CountByEmail(ctx context.Context, email string, since time.Time) (int, time.Time, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases held connections.
	Close()
}
