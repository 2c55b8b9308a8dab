// Package config loads the portal server configuration from a YAML file
// with sensible defaults, so a bare binary starts without any file at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings.
type Config struct {
	Port           int      `yaml:"port"`
	DBPath         string   `yaml:"db_path"`
	UploadsDir     string   `yaml:"uploads_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SessionTTLHrs  int      `yaml:"session_ttl_hours"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "portal.db",
		UploadsDir:     "./uploads",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		SessionTTLHrs:  12,
	}
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.SessionTTLHrs <= 0 {
		cfg.SessionTTLHrs = Default().SessionTTLHrs
	}
	return cfg, nil
}
