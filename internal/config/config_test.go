package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configKeys = []string{
	"APP_ENV", "PORT", "DB_PATH", "DEFAULT_TAX_RATE", "HONOR_DISCOUNT_TYPE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "FORMULA_CACHE_TTL",
	"LOG_LEVEL", "LOG_ENCODING", "SEED_DEMO",
}

// clearEnv unsets every config key for the duration of the test.
// godotenv never overrides a variable that exists, even when empty.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		prev, ok := os.LookupEnv(key)
		_ = os.Unsetenv(key)
		t.Cleanup(func() {
			if ok {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.Port != "8080" || cfg.DBPath != "./dev.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DefaultTaxRate.String() != "20" {
		t.Fatalf("DefaultTaxRate=%s, want 20", cfg.DefaultTaxRate)
	}
	if !cfg.IsDev() || cfg.LogEncoding != "console" {
		t.Fatalf("expected development defaults, got env=%q encoding=%q", cfg.Env, cfg.LogEncoding)
	}
	if cfg.FormulaCacheTTL != 5*time.Minute {
		t.Fatalf("FormulaCacheTTL=%s, want 5m", cfg.FormulaCacheTTL)
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", cfg.Warnings)
	}
}

func TestLoadFrom_ReadsDotEnvAndIgnoresNoise(t *testing.T) {
	clearEnv(t)
	path := writeDotEnv(t, `
# comment

APP_ENV=production
export PORT=9090
DEFAULT_TAX_RATE="5.5"
HONOR_DISCOUNT_TYPE=true
REDIS_ADDR='localhost:6379'
FORMULA_CACHE_TTL=30s
`)

	cfg := LoadFrom(path)

	if cfg.IsDev() {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want 9090", cfg.Port)
	}
	if cfg.DefaultTaxRate.String() != "5.5" {
		t.Fatalf("DefaultTaxRate=%s, want 5.5", cfg.DefaultTaxRate)
	}
	if !cfg.HonorDiscountType {
		t.Fatalf("expected HonorDiscountType")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("RedisAddr=%q", cfg.RedisAddr)
	}
	if cfg.FormulaCacheTTL != 30*time.Second {
		t.Fatalf("FormulaCacheTTL=%s, want 30s", cfg.FormulaCacheTTL)
	}
	if cfg.LogEncoding != "json" {
		t.Fatalf("LogEncoding=%q, want json", cfg.LogEncoding)
	}
}

func TestLoadFrom_DoesNotOverwriteExistingEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	path := writeDotEnv(t, "PORT=9090\n")

	cfg := LoadFrom(path)

	if cfg.Port != "7000" {
		t.Fatalf("Port=%q, want 7000", cfg.Port)
	}
}

func TestLoadFrom_InvalidValuesFallBackWithWarnings(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_TAX_RATE", "twenty")
	t.Setenv("HONOR_DISCOUNT_TYPE", "maybe")
	t.Setenv("FORMULA_CACHE_TTL", "-1s")
	t.Setenv("REDIS_DB", "zero")

	cfg := LoadFrom()

	if cfg.DefaultTaxRate.String() != "20" {
		t.Fatalf("DefaultTaxRate=%s, want 20", cfg.DefaultTaxRate)
	}
	if cfg.HonorDiscountType {
		t.Fatalf("expected HonorDiscountType to stay false")
	}
	if cfg.FormulaCacheTTL != 5*time.Minute {
		t.Fatalf("FormulaCacheTTL=%s, want 5m", cfg.FormulaCacheTTL)
	}
	if len(cfg.Warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %v", cfg.Warnings)
	}
}

func TestLoadFrom_ZeroDefaultTaxRateIsKept(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_TAX_RATE", "0")

	cfg := LoadFrom()

	if !cfg.DefaultTaxRate.IsZero() {
		t.Fatalf("DefaultTaxRate=%s, want 0", cfg.DefaultTaxRate)
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", cfg.Warnings)
	}
}
