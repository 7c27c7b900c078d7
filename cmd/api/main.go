package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/cardgate/cardgate/internal/config"
	"github.com/cardgate/cardgate/internal/infra"
	"github.com/cardgate/cardgate/internal/logging"
	"github.com/cardgate/cardgate/internal/ratelimit"
	"github.com/cardgate/cardgate/internal/server"
	"github.com/cardgate/cardgate/internal/upstream"
)

func main() {
	// .env is a development convenience; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()

	var cache *redis.Client
	var limiter ratelimit.Limiter = ratelimit.NewMemory()
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		limiter = ratelimit.NewRedis(cache)
		logger.Info("rate limiter using shared redis backend")
	}

	tokens := upstream.NewTokenSource(cfg.UpstreamBaseURL, cfg.UpstreamClientID, cfg.UpstreamClientSecret, cfg.UpstreamTimeout)
	banking := upstream.NewClient(cfg.UpstreamBaseURL, tokens, cfg.UpstreamTimeout)

	srv, err := server.New(cfg, banking, limiter, cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	logger.Info("gateway listening", "addr", cfg.Address(), "upstream", cfg.UpstreamBaseURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
