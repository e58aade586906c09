package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"account-service/internal/api"
	"account-service/internal/blob"
	"account-service/internal/config"
	"account-service/internal/events"
	"account-service/internal/jwt"
	"account-service/internal/repository"
	"account-service/internal/service"
	"account-service/internal/tracing"
	_ "account-service/migrations"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	api.SetupGlobalLogger("account-service")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	shutdownTracer, err := tracing.InitTracerProvider("account-service")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations(cfg)
		return
	}

	db := connectDB(cfg)
	defer db.Close()

	publisher, err := events.NewNatsPublisher(cfg.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	uploader, err := blob.NewS3Uploader(cfg)
	if err != nil {
		log.Fatalf("Failed to configure blob storage: %v", err)
	}

	tokens := jwt.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userRepo := repository.NewPostgresUserRepository(db)
	authService := service.NewAuthService(userRepo, tokens, uploader, publisher)
	profileService := service.NewProfileService(userRepo, uploader)

	authHandler := api.NewAuthHandler(authService, tokens, cfg.TempDir)
	profileHandler := api.NewProfileHandler(profileService, cfg.TempDir)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "account-service"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	users := v1.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/refresh-token", authHandler.Refresh)

	guard := api.AuthMiddleware(tokens)
	users.Post("/logout", guard, authHandler.Logout)
	users.Post("/change-password", guard, authHandler.ChangePassword)
	users.Get("/current-user", guard, profileHandler.GetCurrentUser)
	users.Patch("/account-details", guard, profileHandler.UpdateAccountDetails)
	users.Patch("/avatar", guard, profileHandler.UpdateAvatar)
	users.Patch("/cover-image", guard, profileHandler.UpdateCoverImage)

	log.Printf("Listening account-service on port %s", cfg.AppPort)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}

func connectDB(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations(cfg *config.Config) {
	log.Println("Running database migrations...")

	db, err := sql.Open("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	log.Println("Migrations applied successfully!")
}
