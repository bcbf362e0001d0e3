package handlers

import (
	"errors"
	"log"

	"wheel-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes wires the initData handshake. This is the only route that
// proves an identity cryptographically; everything else trusts the header
// set by the mini-app after a successful verify.
func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, userService *services.UserService) {
	app.Post("/auth/verify", func(c *fiber.Ctx) error {
		var req struct {
			InitData string `json:"init_data"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		data, err := authService.VerifyInitData(req.InitData)
		if err != nil {
			var initErr *services.InitDataError
			if errors.As(err, &initErr) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": initErr.Reason})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "verification failed"})
		}

		// Upsert: signature-proven identity creates the account on first
		// contact. No referrer linkage on this path.
		user, err := userService.Register(data.User.ID, data.User.Username, nil)
		if err != nil {
			log.Printf("DB Error upserting user %d: %v", data.User.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register user"})
		}

		return c.JSON(fiber.Map{"user": user})
	})
}
