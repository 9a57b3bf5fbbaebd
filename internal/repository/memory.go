package repository

import (
	"context"
	"sync"
	"time"

	"github.com/formgate-io/contact-gate/internal/models"
)

// InMemoryRepository keeps submissions in process memory. Used in tests and
// when the service is started without a database URL. The mutex around
// InsertSubmission gives the same insert-if-absent guarantee the Postgres
// unique index provides.
type InMemoryRepository struct {
	byID   map[string]*models.Submission
	byHash map[string]*models.Submission
	mu     sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:   make(map[string]*models.Submission),
		byHash: make(map[string]*models.Submission),
	}
}

func (r *InMemoryRepository) InsertSubmission(ctx context.Context, sub *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byHash[sub.ContentHash]; exists {
		return ErrDuplicateContent
	}

	stored := *sub
	r.byID[stored.ID] = &stored
	r.byHash[stored.ContentHash] = &stored
	return nil
}

func (r *InMemoryRepository) HasContentHash(ctx context.Context, hash string, since time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, exists := r.byHash[hash]
	if !exists {
		return false, nil
	}
	return !sub.CreatedAt.Before(since), nil
}

func (r *InMemoryRepository) CountBySourceIdentity(ctx context.Context, source string, since time.Time) (int, time.Time, error) {
	count, oldest := r.countScoped(func(sub *models.Submission) bool {
		return sub.SourceIdentity == source
	}, since)
	return count, oldest, nil
}

func (r *InMemoryRepository) CountByEmail(ctx context.Context, email string, since time.Time) (int, time.Time, error) {
	count, oldest := r.countScoped(func(sub *models.Submission) bool {
		return sub.Email == email
	}, since)
	return count, oldest, nil
}

func (r *InMemoryRepository) countScoped(match func(*models.Submission) bool, since time.Time) (int, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	var oldest time.Time
	for _, sub := range r.byID {
		if match(sub) && !sub.CreatedAt.Before(since) {
			count++
			if oldest.IsZero() || sub.CreatedAt.Before(oldest) {
				oldest = sub.CreatedAt
			}
		}
	}
	return count, oldest
}

func (r *InMemoryRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) Close() {}
