// Package config loads and saves runway's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all runway configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Display DisplayConfig `toml:"display"`
	Daemon  DaemonConfig  `toml:"daemon"`
	Alerts  AlertsConfig  `toml:"alerts"`
}

// GeneralConfig selects the owner and the database.
type GeneralConfig struct {
	Owner       string `toml:"owner"`
	DataDir     string `toml:"data_dir,omitempty"`
	DatabaseURL string `toml:"database_url,omitempty"`
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	Currency string `toml:"currency"`
	Theme    string `toml:"theme"`
}

// DaemonConfig holds background refresher settings.
type DaemonConfig struct {
	Addr         string        `toml:"addr"`
	Interval     time.Duration `toml:"interval"`
	Workers      int           `toml:"workers"`
	EventsBuffer int           `toml:"events_buffer"`
}

// AlertsConfig holds shortfall alert settings. Threshold is written as a
// quoted decimal, e.g. threshold = "50.00".
type AlertsConfig struct {
	Threshold        decimal.Decimal `toml:"threshold"`
	DiscordChannelID string          `toml:"discord_channel_id,omitempty"`
	DiscordToken     string          `toml:"discord_token,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Owner: "default",
		},
		Display: DisplayConfig{
			Currency: "$",
			Theme:    "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8470",
			Interval:     time.Hour,
			EventsBuffer: 200,
		},
		Alerts: AlertsConfig{
			Threshold: decimal.Zero,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "runway")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return ApplyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return ApplyEnv(cfg), nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process
// environment without overwriting variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from RUNWAY_* environment variables.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("RUNWAY_OWNER"); v != "" {
		cfg.General.Owner = v
	}
	if v := os.Getenv("RUNWAY_DATABASE_URL"); v != "" {
		cfg.General.DatabaseURL = v
	}
	return cfg
}

// GetDiscordToken returns the bot token from env var or config, in that order.
func GetDiscordToken(cfg Config) string {
	if tok := os.Getenv("RUNWAY_DISCORD_TOKEN"); tok != "" {
		return tok
	}
	return cfg.Alerts.DiscordToken
}
