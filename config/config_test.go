package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "JWT_ACCESS_TTL", "JWT_REFRESH_TTL", "AUTH_STRATEGY", "STORE_DRIVER", "JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.AccessTTL != 15*time.Minute || cfg.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected ttls: %v / %v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if cfg.AuthStrategy != "bearer" || cfg.StoreDriver != "postgres" {
		t.Fatalf("unexpected defaults: %q %q", cfg.AuthStrategy, cfg.StoreDriver)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate in development: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("AUTH_STRATEGY", "BASIC")
	t.Setenv("LOGIN_RATE_PER_MIN", "nope")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.test ,,https://b.test")
	cfg := Load()

	if cfg.AccessTTL != 5*time.Minute {
		t.Fatalf("expected 5m, got %v", cfg.AccessTTL)
	}
	if cfg.AuthStrategy != "basic" {
		t.Fatalf("expected basic, got %q", cfg.AuthStrategy)
	}
	if cfg.LoginRatePerMin != 10 {
		t.Fatalf("invalid int must fall back to default, got %d", cfg.LoginRatePerMin)
	}
	if o := cfg.CORSOrigins(); len(o) != 2 || o[0] != "https://a.test" {
		t.Fatalf("unexpected origins %v", o)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		t.Setenv("APP_ENV", "")
		return Load()
	}

	cfg := base()
	cfg.AuthStrategy = "oauth"
	if cfg.Validate() == nil {
		t.Error("unknown strategy must fail")
	}

	cfg = base()
	cfg.StoreDriver = "mongo"
	if cfg.Validate() == nil {
		t.Error("unknown store must fail")
	}

	cfg = base()
	cfg.JWTRefreshSecret = cfg.JWTAccessSecret
	if cfg.Validate() == nil {
		t.Error("shared secret must fail")
	}

	cfg = base()
	cfg.Env = "production"
	if cfg.Validate() == nil {
		t.Error("dev secrets in production must fail")
	}
	cfg.JWTAccessSecret, cfg.JWTRefreshSecret = "a-real-secret", "another-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("production with secrets: %v", err)
	}
}
