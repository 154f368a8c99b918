package config

import "testing"

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load must fail without AUTH_SESSION_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != "8787" {
		t.Fatalf("got port %s, want 8787", cfg.App.Port)
	}
	if got := cfg.Auth.SessionTTL().Hours(); got != 168 {
		t.Fatalf("got session TTL %v hours, want 168", got)
	}
	if cfg.Auth.LoginAttemptLimit != 10 {
		t.Fatalf("got attempt limit %d, want 10", cfg.Auth.LoginAttemptLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "test-secret")
	t.Setenv("AUTH_SESSION_TTL_HOURS", "24")
	t.Setenv("APP_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:9000" {
		t.Fatalf("got addr %s, want 0.0.0.0:9000", cfg.App.Addr())
	}
	if got := cfg.Auth.SessionTTL().Hours(); got != 24 {
		t.Fatalf("got session TTL %v hours, want 24", got)
	}
}
