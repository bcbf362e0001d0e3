package middleware

import (
	"log"

	"wheel-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

// AdminOnlyMiddleware gates the admin surface behind the configured
// allow-list. Must run after TelegramContextMiddleware.
func AdminOnlyMiddleware(cfg services.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		telegramID, ok := c.Locals("telegram_id").(int64)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing identity context",
			})
		}
		if !cfg.IsAdmin(telegramID) {
			log.Printf("🚫 [ADMIN] Rejected non-admin %d on %s", telegramID, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not authorized to access admin panel",
			})
		}
		return c.Next()
	}
}
