package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Scheduler struct {
		CoarseTick   string `yaml:"coarseTick"`   // default 10s
		FineTick     string `yaml:"fineTick"`     // default 1s
		Cooldown     string `yaml:"cooldown"`     // default 50s
		FetchTimeout string `yaml:"fetchTimeout"` // default 5s
		SnoozeDelay  string `yaml:"snoozeDelay"`  // default 5m
	} `yaml:"scheduler"`
	Cache struct {
		Size int `yaml:"size"` // questions kept per (exam, type), default 10
	} `yaml:"cache"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// CacheSize returns the configured per-pair cache size or the fallback.
func (c Config) CacheSize(fallback int) int {
	if c.Cache.Size > 0 {
		return c.Cache.Size
	}
	return fallback
}
