package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per client IP in fixed Redis windows. Without
// Redis it falls back to an in-process token bucket per client.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	log    *zap.Logger

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
	limit     rate.Limit
	bursts    int
	now       func() time.Time
}

// localBucket is dropped once idle for a whole window, by which time it would
// have refilled anyway.
type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, log *zap.Logger) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		log:    log,
		local:  make(map[string]*localBucket),
		limit:  rate.Every(config.Window / time.Duration(config.Limit)),
		bursts: config.Limit,
		now:    time.Now,
	}
}

// NewGenerationRateLimiter limits calls to the generation provider.
func NewGenerationRateLimiter(redisClient *redis.Client, limit int, window time.Duration, log *zap.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_generation",
	}, log)
}

// Middleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		if rl.redis == nil {
			if !rl.allowLocal(client) {
				c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
				Fail(c, apperror.RateLimited())
				return
			}
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), client)
		if err != nil {
			// Fail open.
			rl.log.Warn("Rate limit check failed", zap.String("client", client), zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())+1))
			Fail(c, apperror.RateLimited())
			return
		}

		c.Next()
	}
}

// IsAllowed checks if a request from the given client is allowed
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, client string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	key := rl.key(client, windowStart)

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := windowStart.Add(rl.config.Window)
	return count <= rl.config.Limit, remaining, resetTime, nil
}

func (rl *RateLimiter) key(client string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, client, windowStart.Unix())
}

func (rl *RateLimiter) allowLocal(client string) bool {
	rl.mu.Lock()
	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.config.Window {
		rl.sweepLocked(now)
	}
	b, ok := rl.local[client]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rl.limit, rl.bursts)}
		rl.local[client] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()
	return b.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for client, b := range rl.local {
		if now.Sub(b.lastSeen) >= rl.config.Window {
			delete(rl.local, client)
		}
	}
	rl.lastSweep = now
}
