package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/brokerops/commissions/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PAYMENT_BASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.DefaultAnnualCapCents != 2_500_000 {
		t.Fatalf("expected default annual cap of 2500000 cents, got %d", cfg.DefaultAnnualCapCents)
	}

	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limiting disabled by default, got %f", cfg.RateLimitRPS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("PAYMENT_BASE_URL", "http://payments.internal:8443")
	t.Setenv("PAYMENT_TIMEOUT", "5s")
	t.Setenv("DEFAULT_ANNUAL_CAP_CENTS", "1800000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.PaymentBaseURL != "http://payments.internal:8443" || cfg.PaymentTimeout != 5*time.Second {
		t.Fatalf("expected payment settings override, got url=%s timeout=%s", cfg.PaymentBaseURL, cfg.PaymentTimeout)
	}

	if cfg.DefaultAnnualCapCents != 1_800_000 {
		t.Fatalf("expected cap override, got %d", cfg.DefaultAnnualCapCents)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
