package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimit is a fixed-window limiter backed by redis, keyed per user when
// authenticated and per IP otherwise. State lives in the store, so every
// instance of the service enforces the same budget. When redis is down the
// limiter lets requests through.
func RateLimit(redisClient *redis.Client, perMinute int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil || perMinute <= 0 {
			return c.Next()
		}

		subject := c.IP()
		if userID := GetCurrentUserID(c); userID != uuid.Nil {
			subject = userID.String()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", subject, time.Now().Format("200601021504"))

		count, err := redisClient.Incr(c.Context(), key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			_ = redisClient.Expire(c.Context(), key, time.Minute).Err()
		}

		if count > int64(perMinute) {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "Too many requests, slow down",
			})
		}

		return c.Next()
	}
}
