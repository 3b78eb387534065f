package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/mentora-api/internal/utils"
)

// RateLimit throttles a route family to max requests per window. Callers are keyed by user id
// when authenticated and by client IP otherwise, so anonymous intake shares one budget per address.
// Rejections carry a Retry-After header and the standard error envelope.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}
	retryAfter := int(math.Ceil(window.Seconds()))

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return identifier + ":" + rateLimitSubject(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return utils.Fail(c, fiber.StatusTooManyRequests, "too many requests", fiber.Map{
				"limit":               max,
				"retry_after_seconds": retryAfter,
			})
		},
	})
}

func rateLimitSubject(c *fiber.Ctx) string {
	switch id := c.Locals("user_id").(type) {
	case uint:
		if id > 0 {
			return "user:" + strconv.FormatUint(uint64(id), 10)
		}
	case nil:
	default:
		if value := fmt.Sprintf("%v", id); value != "" && value != "0" {
			return "user:" + value
		}
	}
	return "ip:" + c.IP()
}
