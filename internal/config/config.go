// Package config loads the firemerge server configuration from an
// optional YAML file, with Firefly III credentials taken from the
// environment (or a .env file).
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level firemerge.yaml configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Firefly FireflyConfig `yaml:"firefly"`
	Session SessionConfig `yaml:"session"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// FireflyConfig points at the Firefly III instance. BaseURL and Token
// are usually supplied via FIREFLY_BASE_URL and FIREFLY_TOKEN instead
// of the file, so the token stays out of version control.
type FireflyConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// SessionConfig controls the statement session store.
type SessionConfig struct {
	DBPath string `yaml:"db_path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Listen: ":8080"},
		Session: SessionConfig{DBPath: "firemerge-sessions.db"},
	}
}

// Load reads the config file at path when it exists, then applies
// environment overrides. A missing file is not an error; a .env file
// in the working directory is honored.
func Load(path string) (*Config, error) {
	// Ignore a missing .env; the variables may be set directly.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if v := os.Getenv("FIREFLY_BASE_URL"); v != "" {
		cfg.Firefly.BaseURL = v
	}
	if v := os.Getenv("FIREFLY_TOKEN"); v != "" {
		cfg.Firefly.Token = v
	}
	if v := os.Getenv("FIREMERGE_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("FIREMERGE_SESSION_DB"); v != "" {
		cfg.Session.DBPath = v
	}
	return cfg, nil
}

// Validate checks that the ledger connection is configured.
func (c *Config) Validate() error {
	if c.Firefly.BaseURL == "" || c.Firefly.Token == "" {
		return fmt.Errorf("FIREFLY_BASE_URL and FIREFLY_TOKEN must be set in the environment, a .env file, or the config file")
	}
	return nil
}
