package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestLimiterFixedWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)}
	limiter := NewLimiter(NewMemoryCounter(clock.now), 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "user:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = limiter.Allow(ctx, "user:2")
	assert.True(t, ok, "keys are independent")

	clock.t = clock.t.Add(time.Minute)
	ok, _ = limiter.Allow(ctx, "user:1")
	assert.True(t, ok, "window resets after expiry")
}

func TestMemoryCounterEvictsExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)}
	counter := NewMemoryCounter(clock.now)
	ctx := context.Background()

	_, _ = counter.Incr(ctx, "a", time.Second)
	_, _ = counter.Incr(ctx, "b", time.Hour)
	assert.Equal(t, 2, counter.Len())

	clock.t = clock.t.Add(2 * time.Second)
	_, _ = counter.Incr(ctx, "b", time.Hour)
	assert.Equal(t, 1, counter.Len())
}

type failingCounter struct{}

func (failingCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	byPath := func(r *http.Request) string { return r.URL.Path }

	limited := NewLimiter(NewMemoryCounter(nil), 1, time.Minute).Middleware(byPath)(ok)

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	failOpen := NewLimiter(failingCounter{}, 1, time.Minute).Middleware(byPath)(ok)
	rec = httptest.NewRecorder()
	failOpen.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func newRedisCounter(t *testing.T) (*RedisCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCounter(client), mr
}

func TestRedisCounterSetsWindowTTL(t *testing.T) {
	counter, mr := newRedisCounter(t)
	ctx := context.Background()

	n, err := counter.Incr(ctx, "ratelimit:user:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:user:1"))

	n, err = counter.Incr(ctx, "ratelimit:user:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists("ratelimit:user:1"))

	n, err = counter.Incr(ctx, "ratelimit:user:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisCounterRestoresMissingTTL(t *testing.T) {
	counter, mr := newRedisCounter(t)
	ctx := context.Background()

	// A counter already past the limit with no expiry would block forever.
	require.NoError(t, mr.Set("ratelimit:user:1", "5"))
	require.Zero(t, mr.TTL("ratelimit:user:1"))

	n, err := counter.Incr(ctx, "ratelimit:user:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:user:1"))

	mr.FastForward(time.Minute)
	limiter := NewLimiter(counter, 2, time.Minute)
	ok, err := limiter.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCounterBackendDown(t *testing.T) {
	counter, mr := newRedisCounter(t)
	mr.Close()

	_, err := counter.Incr(context.Background(), "ratelimit:user:1", time.Minute)
	assert.Error(t, err)
}
