package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/app.yaml
var defaultAppYAML []byte

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PETARCADE_"

// AppConfig is the process-level configuration shared by every command.
type AppConfig struct {
	UserID   string         `yaml:"user_id" env:"USER_ID"`
	APIURL   string         `yaml:"api_url" env:"API_URL"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`
	Backend  BackendConfig  `yaml:"backend" envPrefix:"BACKEND_"`
	Listen   ListenConfig   `yaml:"listen" envPrefix:"LISTEN_"`
}

// DatabaseConfig selects the storage dialect.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"` // sqlite, postgres or mysql
	DSN    string `yaml:"dsn" env:"DSN"`       // file path for sqlite, URL otherwise
}

// BackendConfig tunes the result-collecting service.
type BackendConfig struct {
	DailyPlays  int           `yaml:"daily_plays" env:"DAILY_PLAYS"`
	Timezone    string        `yaml:"timezone" env:"TIMEZONE"`
	TokenSecret string        `yaml:"token_secret" env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
}

// ListenConfig holds server bind addresses.
type ListenConfig struct {
	API     string `yaml:"api" env:"API"`
	SSH     string `yaml:"ssh" env:"SSH"`
	HostKey string `yaml:"host_key" env:"HOST_KEY"`
}

// Location resolves the backend time zone, falling back to UTC.
// LoadApp rejects unknown zones, so the fallback only covers hand-built
// configs.
func (b BackendConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadApp builds the application config: embedded defaults, then the YAML
// file (customPath, or ~/.petarcade/config.yaml when present), then
// PETARCADE_* environment variables.
func LoadApp(customPath string) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(defaultAppYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse embedded app config: %w", err)
	}

	path := customPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".petarcade", "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.Backend.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Backend.Timezone); err != nil {
			return cfg, fmt.Errorf("invalid backend.timezone %q: %w", cfg.Backend.Timezone, err)
		}
	}

	cfg.Database.DSN = ExpandHome(cfg.Database.DSN)
	cfg.Listen.HostKey = ExpandHome(cfg.Listen.HostKey)
	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
