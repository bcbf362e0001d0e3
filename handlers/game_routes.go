package handlers

import (
	"errors"
	"log"
	"strconv"

	"wheel-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService) {
	app.Post("/game/spin", func(c *fiber.Ctx) error {
		telegramID, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
		if err != nil || telegramID < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid telegram_id"})
		}

		result, err := gameService.Spin(telegramID)
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		case errors.Is(err, services.ErrNoSpins):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No spins available"})
		case err != nil:
			log.Printf("DB Error on spin for %d: %v", telegramID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "spin failed"})
		}
		return c.JSON(result)
	})

	app.Post("/game/buy_spins", func(c *fiber.Ctx) error {
		telegramID, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
		if err != nil || telegramID < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid telegram_id"})
		}
		amount, err := strconv.ParseInt(c.Query("amount", "1"), 10, 64)
		if err != nil || amount < 1 || amount > 1000 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be between 1 and 1000"})
		}

		result, err := gameService.BuySpins(telegramID, amount)
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		case errors.Is(err, services.ErrInsufficientPoints):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient points"})
		case err != nil:
			log.Printf("DB Error on buy_spins for %d: %v", telegramID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "purchase failed"})
		}
		return c.JSON(result)
	})
}
