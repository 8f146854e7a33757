package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/bitrig/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "bitrig.yaml"

// Redis configures the Redis scene store and build locker.
type Redis struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// Store configures the file scene store. A non-empty Key (32 bytes, hex or
// base64) encrypts scenes at rest in whichever store is used.
type Store struct {
	Dir    string `yaml:"dir" json:"dir"`
	Format string `yaml:"format" json:"format"`
	Key    string `yaml:"key" json:"key"`
}

// Config represents the structure of bitrig.yaml.
type Config struct {
	Order      domain.Order `yaml:"order" json:"order"`
	BestEffort bool         `yaml:"best_effort" json:"best_effort"`
	LogLevel   string       `yaml:"log_level" json:"log_level"`
	Redis      Redis        `yaml:"redis" json:"redis"`
	Store      Store        `yaml:"store" json:"store"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Order:    domain.Ascending,
		LogLevel: "info",
		Redis:    Redis{Prefix: "bitrig:"},
		Store:    Store{Dir: "scenes", Format: "yaml"},
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the engine cannot use.
func (c Config) Validate() error {
	switch c.Order {
	case domain.Ascending, domain.Descending:
	default:
		return fmt.Errorf("order must be %q or %q, got %q", domain.Ascending, domain.Descending, c.Order)
	}
	switch c.Store.Format {
	case "yaml", "json":
	default:
		return fmt.Errorf("store.format must be yaml or json, got %q", c.Store.Format)
	}
	return nil
}
