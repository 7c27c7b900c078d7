package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "CardGate"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultUpstreamTimeout = 10 * time.Second
	defaultShutdownDelay   = 10 * time.Second
)

// Config captures application runtime configuration loaded from environment variables.
// It is assembled once at startup and passed by value to components; nothing reads
// the environment after Load returns.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	// Upstream banking provider.
	UpstreamBaseURL      string
	UpstreamClientID     string
	UpstreamClientSecret string
	UpstreamTimeout      time.Duration

	// Keys accepted on X-API-Key. Each distinct key is its own rate-limit identity.
	APIKeys []string

	// SigningSecret is reserved for future token issuance. It is validated at
	// startup but not consumed by the read endpoints.
	SigningSecret string

	// RedisURL, when set, switches the rate limiter to the shared redis backend.
	RedisURL string

	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:              getEnv("APP_NAME", defaultAppName),
		AppEnv:               getEnv("APP_ENV", defaultAppEnv),
		Port:                 getEnv("PORT", defaultPort),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		UpstreamBaseURL:      strings.TrimRight(os.Getenv("UPSTREAM_BASE_URL"), "/"),
		UpstreamClientID:     os.Getenv("UPSTREAM_CLIENT_ID"),
		UpstreamClientSecret: os.Getenv("UPSTREAM_CLIENT_SECRET"),
		SigningSecret:        os.Getenv("SIGNING_SECRET"),
		RedisURL:             os.Getenv("REDIS_URL"),
		APIKeys:              splitKeys(os.Getenv("API_KEYS")),
	}

	var err error
	cfg.UpstreamTimeout, err = durationFromEnv("UPSTREAM_TIMEOUT_SECONDS", "UPSTREAM_TIMEOUT", defaultUpstreamTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownPeriod, err = durationFromEnv("SHUTDOWN_TIMEOUT_SECONDS", "SHUTDOWN_TIMEOUT", defaultShutdownDelay)
	if err != nil {
		return Config{}, err
	}

	if cfg.UpstreamBaseURL == "" {
		return Config{}, fmt.Errorf("UPSTREAM_BASE_URL must be set")
	}
	if cfg.UpstreamClientID == "" || cfg.UpstreamClientSecret == "" {
		return Config{}, fmt.Errorf("UPSTREAM_CLIENT_ID and UPSTREAM_CLIENT_SECRET must be set")
	}
	if cfg.SigningSecret == "" {
		return Config{}, fmt.Errorf("SIGNING_SECRET must be set")
	}
	if len(cfg.APIKeys) == 0 {
		return Config{}, fmt.Errorf("API_KEYS must contain at least one key")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// durationFromEnv resolves a duration that may be supplied either as whole
// seconds or as a Go duration string, preferring the seconds form.
func durationFromEnv(secondsVar, durationVar string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationVar, err)
		}
		return d, nil
	}
	return fallback, nil
}

func splitKeys(raw string) []string {
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
