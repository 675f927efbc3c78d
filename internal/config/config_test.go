package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPrefix != "/api/v1" {
		t.Fatalf("APIPrefix = %q", cfg.APIPrefix)
	}
	if !cfg.StrictStatus {
		t.Fatalf("expected strict status by default")
	}
	if cfg.HTTPTimeout != 300*time.Second {
		t.Fatalf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.WatchInterval != 5*time.Second {
		t.Fatalf("WatchInterval = %s", cfg.WatchInterval)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://vision.internal")
	t.Setenv("STRICT_STATUS", "false")
	t.Setenv("WATCH_INTERVAL_SECONDS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://vision.internal" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.StrictStatus {
		t.Fatalf("expected compatibility mode from env")
	}
	if cfg.WatchInterval != 30*time.Second {
		t.Fatalf("WatchInterval = %s", cfg.WatchInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"API_BASE_URL":         "localhost:8000",
		"HTTP_TIMEOUT_SECONDS": "0",
		"JOURNAL_TTL_SECONDS":  "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
