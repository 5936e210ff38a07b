package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultEnv          = "development"
	defaultDBPath       = "./dev.db"
	defaultPort         = "8080"
	defaultTaxRate      = "20"
	defaultCacheTTL     = 5 * time.Minute
	defaultLogLevel     = "info"
	defaultLogEncoding  = "json"
	developmentEncoding = "console"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env               string
	Port              string
	DBPath            string
	DefaultTaxRate    decimal.Decimal
	HonorDiscountType bool
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	FormulaCacheTTL   time.Duration
	LogLevel          string
	LogEncoding       string
	SeedDemo          bool

	// Warnings lists values that were present but unusable and fell back to defaults.
	Warnings []string
}

// Load reads .env (when present) then the environment.
func Load() Config {
	return LoadFrom(".env")
}

// LoadFrom loads dotenv files then reads the environment. Existing environment
// variables always win over file values; a missing file is not an error.
func LoadFrom(paths ...string) Config {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}

	cfg := Config{
		Env:           getEnv("APP_ENV", defaultEnv),
		Port:          getEnv("PORT", defaultPort),
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel),
	}

	cfg.DefaultTaxRate = decimal.RequireFromString(defaultTaxRate)
	if raw := os.Getenv("DEFAULT_TAX_RATE"); raw != "" {
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || rate.IsNegative() {
			cfg.warn("DEFAULT_TAX_RATE=%q is not a valid percentage, using %s", raw, defaultTaxRate)
		} else {
			cfg.DefaultTaxRate = rate
		}
	}

	cfg.HonorDiscountType = cfg.parseBool("HONOR_DISCOUNT_TYPE", false)
	cfg.SeedDemo = cfg.parseBool("SEED_DEMO", false)
	cfg.RedisDB = cfg.parseInt("REDIS_DB", 0)

	cfg.FormulaCacheTTL = defaultCacheTTL
	if raw := os.Getenv("FORMULA_CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			cfg.warn("FORMULA_CACHE_TTL=%q is not a positive duration, using %s", raw, defaultCacheTTL)
		} else {
			cfg.FormulaCacheTTL = ttl
		}
	}

	cfg.LogEncoding = defaultLogEncoding
	if cfg.IsDev() {
		cfg.LogEncoding = developmentEncoding
	}
	if v := os.Getenv("LOG_ENCODING"); v != "" {
		cfg.LogEncoding = v
	}

	return cfg
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv || c.Env == "dev"
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Config) parseBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		c.warn("%s=%q is not a boolean, using %t", key, raw, def)
		return def
	}
	return b
}

func (c *Config) parseInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.warn("%s=%q is not an integer, using %d", key, raw, def)
		return def
	}
	return n
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
