package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formgate-io/contact-gate/internal/models"
)

const queryTimeout = 5 * time.Second

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// InsertSubmission relies on the unique index on content_hash: the ON
// CONFLICT DO NOTHING insert is the atomic insert-if-absent that closes the
// race left open by the advisory duplicate read.
func (r *PostgresRepository) InsertSubmission(ctx context.Context, sub *models.Submission) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO submissions (id, name, email, body, content_hash, source_identity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (content_hash) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		sub.ID, sub.Name, sub.Email, sub.Body,
		sub.ContentHash, sub.SourceIdentity, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert submission: %v", ErrUnavailable, err)
	}

	if result.RowsAffected() == 0 {
		return ErrDuplicateContent
	}

	return nil
}

func (r *PostgresRepository) HasContentHash(ctx context.Context, hash string, since time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE content_hash = $1 AND created_at >= $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, hash, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: failed to query content hash: %v", ErrUnavailable, err)
	}

	return exists, nil
}

func (r *PostgresRepository) CountBySourceIdentity(ctx context.Context, source string, since time.Time) (int, time.Time, error) {
	return r.countScoped(ctx, "source_identity", source, since)
}

func (r *PostgresRepository) CountByEmail(ctx context.Context, email string, since time.Time) (int, time.Time, error) {
	return r.countScoped(ctx, "email", email, since)
}

func (r *PostgresRepository) countScoped(ctx context.Context, column, key string, since time.Time) (int, time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT COUNT(*), MIN(created_at)
		FROM submissions
		WHERE %s = $1 AND created_at >= $2
	`, column)

	var count int
	var oldest *time.Time
	if err := r.pool.QueryRow(ctx, query, key, since).Scan(&count, &oldest); err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: failed to count by %s: %v", ErrUnavailable, column, err)
	}

	if oldest == nil {
		return count, time.Time{}, nil
	}
	return count, *oldest, nil
}
