package ratelimit

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter per client IP and path, backed by redis.
// It fails open: with no redis client, or a failing one, requests pass.
type Limiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

func New(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{redis: client, limit: int64(limit), window: window}
}

func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.redis == nil {
			return c.Next()
		}

		key := "ratelimit:" + c.Path() + ":" + c.IP()
		ctx := c.Context()

		count, err := l.redis.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("rate limiter unavailable: %v", err)
			return c.Next()
		}
		if count == 1 {
			l.redis.Expire(ctx, key, l.window)
		}
		if count > l.limit {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		}
		return c.Next()
	}
}
