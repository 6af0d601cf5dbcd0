// internal/common/ratelimit/ratelimit.go
// Fixed-window request limiting backed by Redis counters

package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/imadgeboyega/sitter-backend/internal/common/utils"
)

// Counter increments a key that expires after ttl. The first increment
// of a window starts the expiry.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounter stores counters in Redis with INCR + EXPIRE
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr bumps key and makes sure it expires. A key left without a TTL, for
// example after a failed EXPIRE, gets one on the next call.
func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var (
		incr      *redis.IntCmd
		remaining *redis.DurationCmd
	)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		remaining = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}

	// TTL reports -1 for a key with no expiry.
	if remaining.Val() < 0 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, err
		}
	}
	return incr.Val(), nil
}

// MemoryCounter keeps counters in process. Used when Redis is unavailable.
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryCounter(now func() time.Time) *MemoryCounter {
	if now == nil {
		now = time.Now
	}
	return &MemoryCounter{now: now, entries: make(map[string]*memoryEntry)}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}

	e, ok := c.entries[key]
	if !ok {
		e = &memoryEntry{expiresAt: now.Add(ttl)}
		c.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// Len reports live counters.
func (c *MemoryCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Limiter allows at most max requests per key per window
type Limiter struct {
	counter Counter
	max     int
	window  time.Duration
	prefix  string
}

func NewLimiter(counter Counter, max int, window time.Duration) *Limiter {
	return &Limiter{counter: counter, max: max, window: window, prefix: "ratelimit"}
}

// Allow counts one request for key and reports whether it is within the limit
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.counter.Incr(ctx, fmt.Sprintf("%s:%s", l.prefix, key), l.window)
	if err != nil {
		return false, err
	}
	return n <= int64(l.max), nil
}

// Middleware rejects requests over the limit with 429. Counter failures
// are logged and the request is let through.
func (l *Limiter) Middleware(keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := l.Allow(r.Context(), keyFunc(r))
			if err != nil {
				log.Printf("rate limiter unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				utils.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
