package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/star-marathon/star_backend/internal/auth"
	"github.com/star-marathon/star_backend/internal/config"
	"github.com/star-marathon/star_backend/internal/contest"
	"github.com/star-marathon/star_backend/internal/document"
	"github.com/star-marathon/star_backend/internal/middleware"
	"github.com/star-marathon/star_backend/internal/notification"
	"github.com/star-marathon/star_backend/internal/profile"
	"github.com/star-marathon/star_backend/internal/storage"
	"github.com/star-marathon/star_backend/internal/store"
	"github.com/star-marathon/star_backend/internal/storm"
	"github.com/star-marathon/star_backend/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories
	var (
		profileRepo  profile.Repository
		storeRepo    store.Repository
		documentRepo document.Repository
		contestRepo  contest.Repository
	)
	if d.DB != nil {
		profileRepo = profile.NewPostgresRepository(d.DB)
		storeRepo = store.NewPostgresRepository(d.DB)
		documentRepo = document.NewPostgresRepository(d.DB)
		contestRepo = contest.NewPostgresRepository(d.DB)
	} else {
		profileRepo = profile.NewMemoryRepository()
		storeRepo = store.NewMemoryRepository()
		documentRepo = document.NewMemoryRepository()
		contestRepo = contest.NewMemoryRepository()
	}

	// Object storage is optional in dev; admin uploads fail without it.
	var files storage.Uploader
	if d.Cfg.Storage.AccessKey != "" {
		s3, err := storage.NewS3Storage(context.Background(), d.Cfg.Storage)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		files = s3
	} else if isDev(d.Cfg.AppEnv) {
		files = storage.NewMemoryStorage()
	} else {
		d.Logger.Warn("object storage not configured, uploads disabled")
	}

	// Services and handlers
	stormClient := storm.NewClient(d.Cfg.StormAPIURL, d.Logger)
	tokens := auth.NewTokenIssuer(d.Cfg.JWTKey)
	notifier := notification.NewLoggerNotifier(d.Logger)

	authSvc := auth.NewService(stormClient, profileRepo, tokens, d.Cfg.AdminBypassPIN, d.Logger)
	authHandler := auth.NewHandler(authSvc)
	storeSvc := store.NewService(storeRepo, stormClient, files, notifier)
	storeHandler := store.NewHandler(storeSvc)
	documentHandler := document.NewHandler(documentRepo)
	contestSvc := contest.NewService(contestRepo, files, notifier)
	contestHandler := contest.NewHandler(contestSvc)
	userHandler := user.NewHandler(stormClient, profileRepo)

	// API routes
	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	session := middleware.Session(tokens)
	adminOnly := middleware.RequireAdmin()
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}

	RegisterAuthRoutes(api, authHandler, rateLimiter)
	RegisterUserRoutes(api, userHandler, session)
	RegisterStoreRoutes(api, storeHandler, session, adminOnly, idempotency)
	RegisterDocumentRoutes(api, documentHandler, session, adminOnly)
	RegisterContestRoutes(api, contestHandler, session, adminOnly)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
