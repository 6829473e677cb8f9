// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and BOARD_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
)

// Storage backends accepted by storage.backend.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PageSize is the default page size for candidate queries.
	PageSize int `koanf:"page_size"`

	// CandidateCount is how many candidates a regeneration produces by default.
	CandidateCount int `koanf:"candidate_count"`

	// GeneratorSeed makes synthetic data reproducible. Zero picks a random seed.
	GeneratorSeed uint64 `koanf:"generator_seed"`

	// SkillPool lists the tags the generator draws from.
	SkillPool []string `koanf:"skill_pool"`

	Storage Storage `koanf:"storage"`
}

// Storage selects and configures where the candidate list is persisted.
type Storage struct {
	// Backend is one of file, redis or memory.
	Backend string `koanf:"backend"`

	// Path is the JSON file used by the file backend.
	Path string `koanf:"path"`

	RedisAddr string `koanf:"redis_addr"`
	RedisKey  string `koanf:"redis_key"`
	RedisDB   int    `koanf:"redis_db"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		PageSize:       10,
		CandidateCount: 40,
		SkillPool: []string{
			"Operations", "Sustainability", "Logistics", "Maintenance",
			"Leadership", "Safety", "Finance",
		},
		Storage: Storage{
			Backend:   BackendFile,
			Path:      "data/candidates.json",
			RedisAddr: "localhost:6379",
			RedisKey:  "candidateboard:candidates",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PageSize < 1:
		return fmt.Errorf("%w: page_size must be positive, got %d", ErrInvalidConfig, c.PageSize)
	case c.CandidateCount < 1:
		return fmt.Errorf("%w: candidate_count must be positive, got %d", ErrInvalidConfig, c.CandidateCount)
	case len(c.SkillPool) == 0:
		return fmt.Errorf("%w: skill_pool must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage.path is required for the file backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("%w: storage.redis_addr is required for the redis backend", ErrInvalidConfig)
		}
		if c.Storage.RedisDB < 0 {
			return fmt.Errorf("%w: storage.redis_db must not be negative", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage.backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	return nil
}
