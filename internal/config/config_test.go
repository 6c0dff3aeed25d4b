package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Detail.TickInterval != time.Second || cfg.Capture.Delay != time.Second {
		t.Fatalf("unexpected timing defaults %+v %+v", cfg.Detail, cfg.Capture)
	}
	if cfg.Detail.Radius != 136 {
		t.Fatalf("radius = %v", cfg.Detail.Radius)
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Fatalf("address = %s", cfg.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CAPTURE_DELAY", "250ms")
	t.Setenv("DETAIL_TICK_INTERVAL", "2")
	t.Setenv("FEED_VIEWED_TTL", "1h")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Capture.Delay != 250*time.Millisecond || cfg.Detail.TickInterval != 2*time.Second || cfg.Feed.ViewedTTL != time.Hour {
		t.Fatalf("overrides not applied: %+v %+v %+v", cfg.Capture, cfg.Detail, cfg.Feed)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("DETAIL_TICK_INTERVAL", "0s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero tick interval")
	}

	t.Setenv("DETAIL_TICK_INTERVAL", "1s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing secret in production")
	}
}
