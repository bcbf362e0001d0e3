package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wheel-reward-system/handlers"
	"wheel-reward-system/models"
	"wheel-reward-system/services"
	"wheel-reward-system/utils"
	"wheel-reward-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := services.LoadConfig()
	if err != nil {
		log.Fatal("❌ Configuration error: ", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "wheel-reward-system",
	})

	allowedOrigins := make([]string, 0)
	for _, origin := range strings.Split(cfg.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(allowedOrigins, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, X-Telegram-ID",
		MaxAge:       86400,
	}))

	// TranslateError surfaces unique-key violations as gorm.ErrDuplicatedKey,
	// which the crediting pipeline relies on for replay detection.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Println("⚠️  R2 not configured, task icon uploads disabled: ", err)
	}

	balanceService := services.NewBalanceService(db)
	authService := services.NewAuthService(cfg)
	userService := services.NewUserService(db, services.DefaultEconomy)
	taskService := services.NewTaskService(db)
	creditService := services.NewCreditService(db, balanceService, services.DefaultEconomy)
	gameService := services.NewGameService(db, balanceService, services.NewWheel(nil), services.DefaultEconomy)
	adminService := services.NewAdminService(db, balanceService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broadcastClient := workers.NewBroadcastClient(db, cfg)
	go workers.PollBroadcasts(ctx, broadcastClient, 15*time.Second)

	adminService.StartBroadcastScheduler()

	handlers.SetupAuthRoutes(app, authService, userService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupGameRoutes(app, gameService)
	handlers.SetupTaskRoutes(app, cfg, taskService, userService, creditService)
	handlers.SetupAdminRoutes(app, cfg, adminService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Wheel reward backend running"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Broadcast worker running (every 15s)")
	log.Printf("✅ CORS configured for origins: %s", strings.Join(allowedOrigins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
