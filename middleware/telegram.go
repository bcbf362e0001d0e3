package middleware

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// TelegramContextMiddleware resolves the caller's Telegram identity from the
// X-Telegram-ID header and attaches it to the request context. Routes behind
// it can assume a parsed id; proving the id is genuine is the initData
// handshake's job, done once at /auth/verify.
func TelegramContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-Telegram-ID")
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Telegram-ID header",
			})
		}

		telegramID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || telegramID < 1 {
			log.Printf("🚫 [TG_CTX] Invalid X-Telegram-ID for %s", c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid X-Telegram-ID format",
			})
		}

		c.Locals("telegram_id", telegramID)
		return c.Next()
	}
}
