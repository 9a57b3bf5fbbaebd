package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Throttle is the coarse request-rate gate applied before the pipeline is
// invoked, independent of the per-scope submission ceilings enforced by
// Checker.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

type redisThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisThrottle connects to Redis and returns a sliding-window throttle
// shared across service instances.
func NewRedisThrottle(redisURL string, limit int, window time.Duration) (Throttle, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &redisThrottle{
		client: client,
		limit:  int64(limit),
		window: window,
	}, nil
}

// Allow implements sliding window throttling with a single atomic Lua call.
func (r *redisThrottle) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - r.window.Nanoseconds()

	script := `
		local key = KEYS[1]
		local now = tonumber(ARGV[1])
		local window_start = tonumber(ARGV[2])
		local limit = tonumber(ARGV[3])
		local ttl = tonumber(ARGV[4])

		redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

		local current = redis.call('ZCARD', key)

		if current < limit then
			redis.call('ZADD', key, now, now)
			redis.call('EXPIRE', key, ttl)
			return 1
		else
			return 0
		end
	`

	ttl := int64(r.window.Seconds()) + 1
	result, err := r.client.Eval(ctx, script, []string{"throttle:" + key}, now, windowStart, r.limit, ttl).Int()
	if err != nil {
		return false, fmt.Errorf("throttle check failed: %w", err)
	}

	return result == 1, nil
}

func (r *redisThrottle) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// LocalThrottle is the in-process fallback when Redis is disabled. Each key
// gets its own token bucket; state is not shared across instances.
type LocalThrottle struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

// NewLocalThrottle builds a per-key token-bucket throttle allowing limit
// requests per window with a burst of the same size. A non-positive limit
// disables throttling rather than dividing by zero.
func NewLocalThrottle(limit int, window time.Duration) *LocalThrottle {
	limitRate := rate.Inf
	if limit > 0 {
		limitRate = rate.Every(window / time.Duration(limit))
	}
	return &LocalThrottle{
		limiters: make(map[string]*rate.Limiter),
		limit:    limitRate,
		burst:    limit,
	}
}

func (l *LocalThrottle) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}

func (l *LocalThrottle) Close() error {
	return nil
}

// NoOpThrottle always allows requests (for testing or disabled throttling).
type NoOpThrottle struct{}

func (NoOpThrottle) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (NoOpThrottle) Close() error {
	return nil
}
