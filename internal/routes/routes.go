package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/cardgate/cardgate/internal/cards"
	"github.com/cardgate/cardgate/internal/config"
	"github.com/cardgate/cardgate/internal/middleware"
	"github.com/cardgate/cardgate/internal/ratelimit"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	Logger  *slog.Logger
	Banking cards.BankingAPI
	Limiter ratelimit.Limiter
	Cache   *redis.Client // optional, surfaced on /healthz only
}

// Setup configures middlewares and all application routes. Request pipeline
// for the data endpoints: authenticate, then consume quota, then validate
// parameters inside the handler. Quota is deliberately spent before
// validation; it gates the upstream call, not input quality.
func Setup(app *fiber.App, d Deps) error {
	if d.Banking == nil {
		return fmt.Errorf("banking connector is required")
	}
	if d.Limiter == nil {
		return fmt.Errorf("rate limiter is required")
	}
	if len(d.Cfg.APIKeys) == 0 {
		return fmt.Errorf("at least one API key is required")
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Permissive CORS on every response, success or error.
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key, X-Request-ID",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	handler := cards.NewHandler(cards.NewService(d.Banking))

	api := app.Group("/api/v1")
	api.Use(middleware.APIKeyAuth(d.Cfg.APIKeys))
	api.Use(middleware.RateLimit(d.Limiter, d.Logger))

	RegisterCardRoutes(api, handler)

	return nil
}
