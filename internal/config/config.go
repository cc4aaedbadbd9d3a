// Package config loads runtime settings from a YAML file with environment
// overrides for the values that change between deployments.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything the simulation needs at startup.
type Config struct {
	Seed       int64  `yaml:"seed"`
	WorldSize  int    `yaml:"world_size"`
	Founders   int    `yaml:"founders"`
	Port       int    `yaml:"port"`
	DBPath     string `yaml:"db_path"`
	ArchiveDir string `yaml:"archive_dir"`
	Speed      float64 `yaml:"speed"`
	LogLevel   string `yaml:"log_level"` // debug, info, warn, error

	// AdminKey is never read from the file; set GENESIS_ADMIN_KEY.
	AdminKey string `yaml:"-"`
}

func defaults() Config {
	return Config{
		Seed:       42,
		WorldSize:  1000,
		Founders:   20,
		Port:       8080,
		DBPath:     "data/genesis.db",
		ArchiveDir: "data/archives",
		Speed:      1,
		LogLevel:   "info",
	}
}

// Load reads the config at path, falling back to defaults when path is empty
// or the file does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.AdminKey = os.Getenv("GENESIS_ADMIN_KEY")
	if v := os.Getenv("GENESIS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("GENESIS_SEED"); v != "" {
		if s, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = s
		}
	}
	if v := os.Getenv("GENESIS_DB_PATH"); v != "" {
		c.DBPath = v
	}
}

func (c *Config) validate() error {
	if c.WorldSize <= 0 {
		return fmt.Errorf("world_size must be positive, got %d", c.WorldSize)
	}
	if c.Founders < 0 {
		return fmt.Errorf("founders must not be negative, got %d", c.Founders)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.Speed < 0 {
		return fmt.Errorf("speed must not be negative, got %f", c.Speed)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
