package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all mailroles configuration.
type Config struct {
	Sync     SyncConfig     `toml:"sync"`
	Accounts AccountsConfig `toml:"accounts"`
	Gmail    GmailConfig    `toml:"gmail"`
	Roles    RolesConfig    `toml:"roles"`
	Tasks    TasksConfig    `toml:"tasks"`
	Log      LogConfig      `toml:"log"`
}

// GmailConfig holds Gmail OAuth credentials.
// Users can override them via config file or env vars.
type GmailConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// SyncConfig holds container synchronization settings.
type SyncConfig struct {
	Interval string `toml:"interval"`
}

// AccountsConfig holds account selection settings.
type AccountsConfig struct {
	Default string `toml:"default"`
}

// RolesConfig holds role mapping settings.
type RolesConfig struct {
	// DefaultContainerPath is used until a value is saved from the UI or CLI.
	DefaultContainerPath string `toml:"default_container_path"`
}

// TasksConfig holds background task processing settings.
type TasksConfig struct {
	PollInterval string `toml:"poll_interval"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func defaults() Config {
	return Config{
		Sync: SyncConfig{
			Interval: "5m",
		},
		Roles: RolesConfig{
			DefaultContainerPath: "Mailroles",
		},
		Tasks: TasksConfig{
			PollInterval: "5s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from path. If path is empty, returns defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SyncInterval parses the sync interval.
func (c *Config) SyncInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Sync.Interval)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sync interval %q: %w", c.Sync.Interval, err)
	}
	return d, nil
}

// TaskPollInterval parses how often the task processor polls for queued work.
func (c *Config) TaskPollInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Tasks.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("failed to parse task poll interval %q: %w", c.Tasks.PollInterval, err)
	}
	return d, nil
}

// ConfigDir returns the mailroles config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mailroles")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mailroles")
}

// DataDir returns the mailroles data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mailroles")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mailroles")
}
