package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// SyncConfig controls the background synchronization schedule and the
// defaults applied to on-demand runs.
type SyncConfig struct {
	// Enabled turns the interval scheduler on. On-demand sync via the
	// HTTP surface works regardless.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// IntervalSec is how often (in seconds) the scheduler sweeps all
	// accounts.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`

	// DefaultDays is the day window used when a sync request omits one.
	DefaultDays int `mapstructure:"default_days" yaml:"default_days"`
}

// NotifyConfig holds outbound notification settings.
type NotifyConfig struct {
	// SlackWebhookURL receives a text message when a message is marked
	// Interested. Empty disables Slack delivery.
	SlackWebhookURL string `mapstructure:"slack_webhook_url" yaml:"slack_webhook_url"`
}

// CredentialsConfig selects where account passwords live.
type CredentialsConfig struct {
	// Backend is "database" (default) or "keyring". With "keyring" the
	// password is stored in the OS keyring under the account ID and the
	// database keeps an empty secret.
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// LogConfig holds logger output settings.
type LogConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Sync        SyncConfig        `mapstructure:"sync" yaml:"sync"`
	Notify      NotifyConfig      `mapstructure:"notify" yaml:"notify"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/onebox/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "onebox", "config.yaml")
}

// defaultConfig returns a sensible default configuration.
func defaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".local", "share", "onebox")
	return &Config{
		Server:      ServerConfig{Addr: ":8000"},
		Database:    DatabaseConfig{Path: filepath.Join(dataDir, "onebox.db")},
		Sync:        SyncConfig{Enabled: false, IntervalSec: 600, DefaultDays: 30},
		Credentials: CredentialsConfig{Backend: "database"},
		Log:         LogConfig{Path: filepath.Join(dataDir, "oneboxd.log")},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := defaultConfig()
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("sync.enabled", def.Sync.Enabled)
	v.SetDefault("sync.interval_sec", def.Sync.IntervalSec)
	v.SetDefault("sync.default_days", def.Sync.DefaultDays)
	v.SetDefault("credentials.backend", def.Credentials.Backend)
	v.SetDefault("log.path", def.Log.Path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return def, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.IntervalSec <= 0 {
		cfg.Sync.IntervalSec = def.Sync.IntervalSec
	}
	if cfg.Sync.DefaultDays <= 0 {
		cfg.Sync.DefaultDays = def.Sync.DefaultDays
	}

	return cfg, nil
}
