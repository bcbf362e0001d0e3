package handlers

import (
	"errors"
	"log"
	"strconv"

	"wheel-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupTaskRoutes wires the offer catalog and the two server-to-server
// postback variants. Both postbacks authenticate the shared token in
// constant time BEFORE touching the database, so a forged request learns
// nothing about which accounts exist.
func SetupTaskRoutes(app *fiber.App, cfg services.Config, taskService *services.TaskService,
	userService *services.UserService, creditService *services.CreditService) {

	app.Get("/tasks", func(c *fiber.Ctx) error {
		tasks, err := taskService.ListActive()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching tasks"})
		}
		return c.JSON(tasks)
	})

	// Resolves a tracking link back to its offer, for the mini-app's
	// offer detail view.
	app.Get("/tasks/code/:tracking_code", func(c *fiber.Ctx) error {
		task, err := taskService.GetByTrackingCode(c.Params("tracking_code"))
		if errors.Is(err, services.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching task"})
		}
		return c.JSON(task)
	})

	// Legacy GET postback: networks that report via querystring with a
	// native unique click_id. Flat spin reward.
	app.Get("/tasks/postback", func(c *fiber.Ctx) error {
		if !cfg.CheckPostbackToken(c.Query("token")) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid Token"})
		}

		clickID := c.Query("click_id")
		if len(clickID) < 1 || len(clickID) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid click_id"})
		}
		subID, err := strconv.ParseInt(c.Query("sub_id"), 10, 64)
		if err != nil || subID < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sub_id"})
		}
		payout, err := strconv.ParseFloat(c.Query("payout", "0"), 64)
		if err != nil || payout < 0 || payout > 100000 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payout"})
		}

		user, err := userService.GetByTelegramID(subID)
		if errors.Is(err, services.ErrUserNotFound) {
			return c.JSON(fiber.Map{"status": "error", "message": "User not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		_, duplicate, err := creditService.CompleteTask(
			user.ID, creditService.Economy.LegacyPostbackTaskID, clickID, creditService.Economy.LegacyPostbackSpins)
		if err != nil {
			log.Printf("❌ Postback credit failed for %d: %v", subID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "credit failed"})
		}
		if duplicate {
			return c.JSON(fiber.Map{"status": "duplicate"})
		}

		refreshed, err := userService.GetByTelegramID(subID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		return c.JSON(fiber.Map{"status": "ok", "new_spins": refreshed.Spins})
	})

	// CPAGrip global postback: POST form data with no native transaction
	// id, so the dedup key is synthesized from (offer, user).
	app.Post("/tasks/cpagrip_postback", func(c *fiber.Ctx) error {
		if !cfg.CheckPostbackToken(c.FormValue("password")) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access Denied"})
		}

		telegramID, err := strconv.ParseInt(c.FormValue("tracking_id"), 10, 64)
		if err != nil || telegramID < 1 {
			return c.JSON(fiber.Map{"status": "error", "message": "Invalid Tracking ID"})
		}
		offerID := c.FormValue("offer_id")
		if offerID == "" || len(offerID) > 128 {
			return c.JSON(fiber.Map{"status": "error", "message": "Invalid offer ID"})
		}
		payout, err := strconv.ParseFloat(c.FormValue("payout"), 64)
		if err != nil {
			return c.JSON(fiber.Map{"status": "error", "message": "Invalid payout"})
		}

		rewardSpins, err := creditService.PostbackReward(payout)
		if errors.Is(err, services.ErrInvalidPayout) {
			return c.JSON(fiber.Map{"status": "error", "message": "Invalid payout"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reward computation failed"})
		}

		user, err := userService.GetByTelegramID(telegramID)
		if errors.Is(err, services.ErrUserNotFound) {
			return c.JSON(fiber.Map{"status": "error", "message": "User not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		key := services.CPAGripTransactionKey(offerID, telegramID)
		_, duplicate, err := creditService.CompleteTask(user.ID, creditService.Economy.CPAGripTaskID, key, rewardSpins)
		if err != nil {
			log.Printf("❌ CPAGrip credit failed for %d: %v", telegramID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "credit failed"})
		}
		if duplicate {
			return c.JSON(fiber.Map{"status": "duplicate", "message": "Offer already processed"})
		}
		return c.JSON(fiber.Map{"status": "ok", "message": "Postback processed"})
	})
}
