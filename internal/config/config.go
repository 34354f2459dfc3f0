package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName          = "SynthVault"
	defaultAppEnv           = "development"
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultShutdownDelay    = 10 * time.Second
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultAccessTokenTTL   = 15 * time.Minute
	defaultPriceCacheTTL    = 30 * time.Second
	defaultPlaceholderPrice = 800_000_000 // $800 with 6 decimals, matching the bootstrap feed

	// PriceSourceStatic serves the fixed placeholder price on trade and
	// redeem paths. PriceSourceLive reads the on-ledger oracle instead.
	PriceSourceStatic = "static"
	PriceSourceLive   = "live"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	AccessTokenTTL time.Duration
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// Issuance engine knobs.
	AutoMintOnDeposit bool
	PriceSource       string
	PlaceholderPrice  uint64
	OracleMaxAge      time.Duration
	PriceCacheTTL     time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTokenTTL:    defaultAccessTokenTTL,
		ShutdownPeriod:    defaultShutdownDelay,
		IdempotencyTTL:    defaultIdempotencyTTL,
		PriceSource:       strings.ToLower(getEnv("PRICE_SOURCE", PriceSourceStatic)),
		PlaceholderPrice:  defaultPlaceholderPrice,
		PriceCacheTTL:     defaultPriceCacheTTL,
		AutoMintOnDeposit: false,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = durationEnv("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.OracleMaxAge, err = durationEnv("ORACLE_MAX_AGE", 0); err != nil {
		return Config{}, err
	}
	if cfg.PriceCacheTTL, err = durationEnv("PRICE_CACHE_TTL", cfg.PriceCacheTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("AUTO_MINT_ON_DEPOSIT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid AUTO_MINT_ON_DEPOSIT: %w", err)
		}
		cfg.AutoMintOnDeposit = b
	}

	if v := os.Getenv("PLACEHOLDER_PRICE"); v != "" {
		p, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PLACEHOLDER_PRICE: %w", err)
		}
		cfg.PlaceholderPrice = p
	}

	switch cfg.PriceSource {
	case PriceSourceStatic, PriceSourceLive:
	default:
		return Config{}, fmt.Errorf("invalid PRICE_SOURCE %q: must be %q or %q", cfg.PriceSource, PriceSourceStatic, PriceSourceLive)
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
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

// IsDev reports whether the app runs in a local/dev environment, where the
// Postgres and Redis backends may be replaced with in-memory fallbacks.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
