package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/synthvault/synthvault/internal/config"
	"github.com/synthvault/synthvault/internal/engine"
	"github.com/synthvault/synthvault/internal/identity"
	"github.com/synthvault/synthvault/internal/middleware"
	"github.com/synthvault/synthvault/internal/notification"
	"github.com/synthvault/synthvault/internal/oracle"
	"github.com/synthvault/synthvault/internal/store"
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
	if !d.Cfg.IsDev() {
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
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Backends: transaction-scoped Postgres repositories in deployed
	// environments, shared in-memory state in dev.
	var runner store.Runner
	if d.DB != nil {
		runner = store.NewPostgres(d.DB)
	} else {
		runner = store.NewMemory()
	}

	var priceHistory oracle.HistoryRepository
	if d.DB != nil {
		priceHistory = oracle.NewPostgresHistory(d.DB)
	} else {
		priceHistory = oracle.NewMemoryHistory()
	}
	priceCache := oracle.NewCache(d.Cache, d.Cfg.PriceCacheTTL)
	oracleSvc := oracle.NewService(runner.View().Oracles, priceHistory, priceCache, d.Logger)

	var prices oracle.PriceSource
	switch d.Cfg.PriceSource {
	case config.PriceSourceLive:
		prices = oracle.LiveSource{MaxAge: d.Cfg.OracleMaxAge}
	default:
		prices = oracle.StaticSource{Value: d.Cfg.PlaceholderPrice}
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	eng := engine.New(runner, prices, notifier, d.Logger, engine.Config{
		AutoMintOnDeposit: d.Cfg.AutoMintOnDeposit,
	})

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(identityRepo, d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL)

	identityHandler := identity.NewHandler(identitySvc)
	oracleHandler := oracle.NewHandler(oracleSvc)
	engineHandler := engine.NewHandler(eng, middleware.CallerID)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, identityHandler, rateLimiter)
	RegisterOracleReadRoutes(api, oracleHandler)

	// Protected routes
	authmw := middleware.BearerAuth(identitySvc)
	protected := api.Group("", authmw)
	RegisterOracleAdminRoutes(protected, oracleHandler)
	RegisterVaultRoutes(protected, engineHandler)
	RegisterPositionRoutes(protected, engineHandler)

	return nil
}
