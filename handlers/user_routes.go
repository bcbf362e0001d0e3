package handlers

import (
	"errors"
	"log"
	"strconv"

	"wheel-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	// Explicit registration, used by the bot's /start flow; the only path
	// that can attach a referrer.
	app.Post("/users", func(c *fiber.Ctx) error {
		var req struct {
			TelegramID int64  `json:"telegram_id"`
			Username   string `json:"username"`
			ReferrerID *uint  `json:"referrer_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.TelegramID < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "telegram_id must be positive"})
		}

		user, err := userService.Register(req.TelegramID, req.Username, req.ReferrerID)
		if err != nil {
			log.Printf("DB Error registering user %d: %v", req.TelegramID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register user"})
		}
		return c.JSON(user)
	})

	app.Get("/users/:telegram_id", func(c *fiber.Ctx) error {
		telegramID, err := strconv.ParseInt(c.Params("telegram_id"), 10, 64)
		if err != nil || telegramID < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid telegram_id"})
		}

		user, err := userService.GetByTelegramID(telegramID)
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching user"})
		}
		return c.JSON(user)
	})
}
