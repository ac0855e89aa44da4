package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/shelfmark")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CATALOG_CLIENT_ID", "cid")
	t.Setenv("CATALOG_CLIENT_SECRET", "csecret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Errorf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if cfg.AppPort != 8080 {
		t.Errorf("AppPort = %d, want 8080", cfg.AppPort)
	}
	if cfg.CatalogBaseURL != "https://openapi.naver.com" {
		t.Errorf("CatalogBaseURL = %q", cfg.CatalogBaseURL)
	}
	if cfg.CatalogTimeout != 10*time.Second {
		t.Errorf("CatalogTimeout = %v, want 10s", cfg.CatalogTimeout)
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Errorf("SessionTTL = %v, want 720h", cfg.SessionTTL)
	}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("default env should be development")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CATALOG_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.AppPort != 9090 {
		t.Errorf("AppPort = %d, want 9090", cfg.AppPort)
	}
	if cfg.CatalogTimeout != 3*time.Second {
		t.Errorf("CatalogTimeout = %v, want 3s", cfg.CatalogTimeout)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	// A required variable set to the empty string counts as missing.
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("CATALOG_CLIENT_ID", "")
	t.Setenv("CATALOG_CLIENT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing required variables")
	}
}

func TestLoadBlankSingleRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for blank DATABASE_URL")
	}
}
