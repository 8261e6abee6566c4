package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis returns an error.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis returns an error.
	FailClosed
)

// localLimiters backs rate limiting when no Redis client is configured.
// Limits are then per process instead of per deployment.
var localLimiters = struct {
	sync.Mutex
	m map[string]*rate.Limiter
}{m: make(map[string]*rate.Limiter)}

func rateLimitBypassed() bool {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	switch env {
	case "test", "development", "stress":
		return true
	}
	return false
}

// CheckRateLimit reports whether id may perform another call to resource.
// Limits are bypassed when APP_ENV is test, development or stress.
// A nil rdb falls back to an in-process token bucket.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rateLimitBypassed() {
		return true, nil
	}
	key := fmt.Sprintf("rl:%s:%s", resource, id)

	if rdb == nil {
		return localAllow(key, limit, window), nil
	}

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		RedisErrors.WithLabelValues("ratelimit_incr").Inc()
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			RedisErrors.WithLabelValues("ratelimit_expire").Inc()
		}
	}
	return cnt <= int64(limit), nil
}

func localAllow(key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return false
	}
	localLimiters.Lock()
	l, ok := localLimiters.m[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		localLimiters.m[key] = l
	}
	localLimiters.Unlock()
	return l.Allow()
}

func resetLocalLimiters() {
	localLimiters.Lock()
	localLimiters.m = make(map[string]*rate.Limiter)
	localLimiters.Unlock()
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by authenticated userID (if set in c.Locals("userID")) otherwise by remote IP.
// It defaults to FailOpen policy.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing `limit` requests per `window` with a specific failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = fmt.Sprintf("ip:%s", c.IP())
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"message": "Service temporarily unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}
