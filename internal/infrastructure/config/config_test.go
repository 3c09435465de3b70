package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Session.MockLatency != time.Second {
		t.Fatalf("expected 1s mock latency, got %v", cfg.Session.MockLatency)
	}
	if cfg.Session.TTL != 720*time.Hour {
		t.Fatalf("expected 720h session ttl, got %v", cfg.Session.TTL)
	}
	if cfg.Session.JWTSecret != devSecret {
		t.Fatalf("expected development secret fallback")
	}
	if cfg.Accounts.Backend != AccountsMemory {
		t.Fatalf("expected memory backend, got %q", cfg.Accounts.Backend)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second}
	if len(cfg.Timers.SplashSteps) != len(want) {
		t.Fatalf("unexpected splash steps: %v", cfg.Timers.SplashSteps)
	}
	for i := range want {
		if cfg.Timers.SplashSteps[i] != want[i] {
			t.Fatalf("unexpected splash steps: %v", cfg.Timers.SplashSteps)
		}
	}
	if cfg.Timers.SplashSettle != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s settle, got %v", cfg.Timers.SplashSettle)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                  "9090",
		"JWT_SECRET":            "s3cret",
		"MOCK_LATENCY":          "0s",
		"AUTH_VERIFY_PASSWORDS": "true",
		"ACCOUNTS_BACKEND":      "mongo",
		"REDIS_DB":              "3",
		"TOAST_WORKERS":         "16",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Session.JWTSecret != "s3cret" || cfg.Session.MockLatency != 0 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.Session.VerifyPasswords || cfg.Accounts.Backend != AccountsMongo {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Redis.DB != 3 || cfg.Toasts.Workers != 16 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"production without secret", map[string]string{"ENV": "production"}, "JWT_SECRET"},
		{"unknown backend", map[string]string{"ACCOUNTS_BACKEND": "postgres"}, "ACCOUNTS_BACKEND"},
		{"negative latency", map[string]string{"MOCK_LATENCY": "-1s"}, "MOCK_LATENCY"},
		{"decreasing steps", map[string]string{"SPLASH_STEPS": "2s,1s"}, "SPLASH_STEPS"},
		{"zero typing interval", map[string]string{"TYPING_INTERVAL": "0s"}, "TYPING_INTERVAL"},
		{"bad duration", map[string]string{"SESSION_TTL": "forever"}, "process env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
