package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RUNWAY_OWNER", "")
	t.Setenv("RUNWAY_DATABASE_URL", "")

	if Exists() {
		t.Fatal("config should not exist yet")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Owner != "default" || cfg.Daemon.Interval != time.Hour || cfg.Display.Currency != "$" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RUNWAY_OWNER", "")
	t.Setenv("RUNWAY_DATABASE_URL", "")

	cfg := DefaultConfig()
	cfg.General.Owner = "alice"
	cfg.Daemon.Interval = 15 * time.Minute
	cfg.Daemon.Workers = 3
	cfg.Alerts.Threshold = decimal.RequireFromString("125.50")
	cfg.Alerts.DiscordChannelID = "1234"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("config should exist after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.Owner != "alice" || got.Daemon.Interval != 15*time.Minute || got.Daemon.Workers != 3 {
		t.Fatalf("loaded = %+v", got)
	}
	if !got.Alerts.Threshold.Equal(cfg.Alerts.Threshold) || got.Alerts.DiscordChannelID != "1234" {
		t.Fatalf("alerts = %+v", got.Alerts)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("RUNWAY_OWNER", "")
	t.Setenv("RUNWAY_DATABASE_URL", "")
	t.Setenv("RUNWAY_DISCORD_TOKEN", "")

	envFile := filepath.Join(dir, ".env")
	content := "RUNWAY_OWNER=bob\nRUNWAY_DISCORD_TOKEN=secret\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	// godotenv never overrides variables that are already set, even empty
	// ones, so clear them for this test.
	_ = os.Unsetenv("RUNWAY_OWNER")
	_ = os.Unsetenv("RUNWAY_DISCORD_TOKEN")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("RUNWAY_OWNER")
		_ = os.Unsetenv("RUNWAY_DISCORD_TOKEN")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Owner != "bob" {
		t.Fatalf("owner = %q, want bob", cfg.General.Owner)
	}
	if tok := GetDiscordToken(cfg); tok != "secret" {
		t.Fatalf("token = %q, want secret", tok)
	}
}
