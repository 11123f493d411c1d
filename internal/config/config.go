// Package config loads the daemon configuration from a YAML file with
// environment-variable overrides. Every knob is a simple bounded numeric
// or string parameter.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/emberhollow/villagesim/internal/engine"
)

// Config holds all daemon settings.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	AdminKey   string `yaml:"admin_key"`
	LogLevel   string `yaml:"log_level"`

	Seed       int64 `yaml:"seed"`
	Population int   `yaml:"population"`
	MapSize    int   `yaml:"map_size"`

	TicksPerHour           int `yaml:"ticks_per_hour"`
	SaveIntervalSec        int `yaml:"save_interval_sec"`
	InteractionRadius      int `yaml:"interaction_radius"`
	InteractionCooldown    int `yaml:"interaction_cooldown"`
	MaxInteractionsPerTick int `yaml:"max_interactions_per_tick"`
	BroadcastCadence       int `yaml:"broadcast_cadence"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		ListenAddr:             ":8080",
		DBPath:                 "data/village.db",
		LogLevel:               "info",
		Seed:                   42,
		Population:             16,
		MapSize:                64,
		TicksPerHour:           10,
		SaveIntervalSec:        60,
		InteractionRadius:      3,
		InteractionCooldown:    30,
		MaxInteractionsPerTick: 40,
		BroadcastCadence:       2,
	}
}

// Load reads the config file at path (missing file = defaults), then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides settings from VILLAGESIM_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("VILLAGESIM_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("VILLAGESIM_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("VILLAGESIM_ADMIN_KEY"); v != "" {
		cfg.AdminKey = v
	}
	if v := os.Getenv("VILLAGESIM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("VILLAGESIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("VILLAGESIM_POPULATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Population = n
		}
	}
	if v := os.Getenv("VILLAGESIM_TICKS_PER_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TicksPerHour = n
		}
	}
	if v := os.Getenv("VILLAGESIM_SAVE_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SaveIntervalSec = n
		}
	}
}

// EngineConfig maps the config onto engine tuning.
func (c Config) EngineConfig() engine.Config {
	ec := engine.DefaultConfig()
	ec.TicksPerHour = c.TicksPerHour
	if c.BroadcastCadence > 0 {
		ec.BroadcastCadence = uint64(c.BroadcastCadence)
	}
	if c.InteractionRadius > 0 {
		ec.Resolver.Radius = c.InteractionRadius
	}
	if c.InteractionCooldown > 0 {
		ec.Resolver.CooldownTicks = uint64(c.InteractionCooldown)
	}
	if c.MaxInteractionsPerTick > 0 {
		ec.Resolver.MaxPerTick = c.MaxInteractionsPerTick
	}
	return ec
}
