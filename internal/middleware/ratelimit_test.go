package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// unreachableRedis points at a port nothing listens on.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCheckRateLimit_Bypass(t *testing.T) {
	for _, env := range []string{"test", "development", "stress"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			for i := 0; i < 3; i++ {
				allowed, err := CheckRateLimit(context.Background(), nil, "bypass", "1", 1, time.Minute)
				require.NoError(t, err)
				assert.True(t, allowed)
			}
		})
	}
}

func TestCheckRateLimit_Redis(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_RedisDown(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := unreachableRedis(t)

	allowed, err := CheckRateLimit(context.Background(), rdb, "login", "ip:1", 5, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestCheckRateLimit_LocalFallback(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	resetLocalLimiters()
	t.Cleanup(resetLocalLimiters)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, nil, "trade", "user:9", 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := CheckRateLimit(ctx, nil, "trade", "user:9", 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = CheckRateLimit(ctx, nil, "trade", "user:10", 3, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed, "limits are per key")
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("bypass in test mode", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, 1, time.Minute), handler)

		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			_ = resp.Body.Close()
		}
	})

	t.Run("429 after limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newTestRedis(t)
		app := fiber.New()
		app.Post("/login", RateLimit(rdb, 1, time.Minute, "login"), handler)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fail open when redis is down", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		rdb := unreachableRedis(t)
		app := fiber.New()
		app.Get("/test", RateLimit(rdb, 1, time.Minute), handler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fail closed when redis is down", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		rdb := unreachableRedis(t)
		app := fiber.New()
		app.Get("/sensitive", RateLimitWithPolicy(rdb, 1, time.Minute, FailClosed), handler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
