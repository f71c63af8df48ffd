package main

import (
	"context"
	"log"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/config"
	"github.com/AbelSturm/fitzoapp/internal/database"
	"github.com/AbelSturm/fitzoapp/internal/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	svc := routes.NewServices(cfg, database.DB)
	runStartupTasks(cfg, svc)

	app := fiber.New(fiber.Config{AppName: "fitzo"})
	app.Use(recover.New())
	app.Use(logger.New())
	if cfg.CORSAllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowOrigins,
			AllowCredentials: true,
		}))
	}

	if err := routes.RegisterRoutes(app, cfg, svc); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	log.Printf("Server starting on port %s (%s)", cfg.Port, cfg.AppEnv)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// runStartupTasks bootstraps the admin account and drops expired sessions.
// Failures are logged; the server still starts.
func runStartupTasks(cfg *config.Config, svc *routes.Services) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if cfg.DefaultAdminEmail != "" && cfg.DefaultAdminPassword != "" {
		if err := svc.Identity.EnsureAdmin(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
			log.Printf("Failed to ensure default admin: %v", err)
		}
	}

	purged, err := svc.Identity.PurgeExpiredSessions(ctx)
	if err != nil {
		log.Printf("Failed to purge expired sessions: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Purged %d expired sessions", purged)
	}
}
