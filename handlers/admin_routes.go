package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"wheel-reward-system/middleware"
	"wheel-reward-system/services"
	"wheel-reward-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

// SetupAdminRoutes wires the privileged surface: dashboard stats, task
// catalog management, manual balance corrections and broadcasts. Everything
// here sits behind the identity context plus the admin allow-list.
func SetupAdminRoutes(app *fiber.App, cfg services.Config, adminService *services.AdminService) {
	admin := app.Group("/admin",
		middleware.TelegramContextMiddleware(),
		middleware.AdminOnlyMiddleware(cfg),
	)

	admin.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := adminService.Stats()
		if err != nil {
			log.Printf("DB Error fetching stats: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch stats"})
		}
		return c.JSON(stats)
	})

	// Multipart so the offer icon can ride along; fields mirror TaskInput.
	admin.Post("/tasks", func(c *fiber.Ctx) error {
		rewardSpins, err := strconv.ParseInt(c.FormValue("reward_spins", "1"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid reward_spins"})
		}
		payout, err := strconv.ParseFloat(c.FormValue("cpa_payout", "0"), 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cpa_payout"})
		}

		input := services.TaskInput{
			Name:         c.FormValue("name"),
			Description:  c.FormValue("description"),
			CPANetworkID: c.FormValue("cpa_network_id"),
			RewardSpins:  rewardSpins,
			CPAPayout:    payout,
			IsActive:     c.FormValue("is_active", "true") == "true",
		}

		if icon, err := c.FormFile("icon"); err == nil && icon != nil {
			url, err := utils.UploadTaskIcon(icon, slug.Make(input.Name))
			if err != nil {
				log.Printf("⚠️  Icon upload failed for task %q: %v", input.Name, err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "icon upload failed"})
			}
			input.IconURL = url
		}

		task, err := adminService.CreateTask(input)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(task)
	})

	admin.Patch("/tasks/:id/active", func(c *fiber.Ctx) error {
		taskID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid task id"})
		}
		var req struct {
			Active bool `json:"active"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if err := adminService.SetTaskActive(uint(taskID), req.Active); err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update task"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Manual correction path. The delta may be negative; a correction that
	// would overdraw the balance fails on the column check constraint.
	admin.Post("/users/:id/spins", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}
		var req struct {
			Amount int64 `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		user, err := adminService.AdjustBalance(uint(userID), services.FieldSpins, float64(req.Amount))
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to adjust balance"})
		}
		return c.JSON(user)
	})

	admin.Post("/broadcast", func(c *fiber.Ctx) error {
		var req struct {
			Message     string     `json:"message"`
			ScheduledAt *time.Time `json:"scheduled_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		b, err := adminService.EnqueueBroadcast(req.Message, req.ScheduledAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	})
}
