package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"eloan-must/internal/adapters/http/middleware"
	"eloan-must/internal/adapters/http/routes"
	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/config"
	"eloan-must/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "eloan-must/docs" // Swagger docs
)

// @title E-Loan Must API
// @version 1.0
// @description Admin backend for the E-Loan Must loan lifecycle: review, approval and disbursement.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@eloanmust.id

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Roles, permissions, super admin and demo products
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Redis is optional; the plafond cache falls back to the database
	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, continuing without cache: %v", err)
		rdb = nil
	}
	defer config.CloseRedis()

	// Token and notification housekeeping
	cronService := services.NewCronService(
		cfg.Cron,
		repositories.NewRefreshTokenRepository(db),
		repositories.NewPasswordResetRepository(db),
		services.NewNotificationService(repositories.NewNotificationRepository(db)),
	)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "E-Loan Must API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, rdb, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
