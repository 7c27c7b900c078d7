package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cardgate/cardgate/internal/apierr"
	"github.com/cardgate/cardgate/internal/cards"
	"github.com/cardgate/cardgate/internal/config"
	"github.com/cardgate/cardgate/internal/ratelimit"
	"github.com/cardgate/cardgate/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, banking cards.BankingAPI, limiter ratelimit.Limiter, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: apierr.Handler,
	})

	deps := routes.Deps{
		Cfg:     cfg,
		Logger:  logger,
		Banking: banking,
		Limiter: limiter,
		Cache:   cache,
	}
	if err := routes.Setup(app, deps); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
