// Package config loads exporter configuration from YAML, the environment and
// command-line overrides, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/pokemon-export/pkg/pagination"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL  = "POKEMON_BASE_URL"
	EnvOutput   = "POKEMON_OUTPUT"
	EnvLogLevel = "LOG_LEVEL"
	EnvRedisURL = "REDIS_URL"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config represents the overall exporter configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Output  OutputConfig  `yaml:"output"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig describes the upstream API and how it is paged.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	UserAgent      string        `yaml:"user_agent"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
	PageSize       int           `yaml:"page_size"`
	Mode           string        `yaml:"mode"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
	Burst          int           `yaml:"burst"`
}

// OutputConfig holds the CSV destination.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig selects the optional response cache.
type CacheConfig struct {
	Backend    string        `yaml:"backend"`
	RedisAddr  string        `yaml:"redis_addr"`
	RedisDB    int           `yaml:"redis_db"`
	TTLSeconds int           `yaml:"ttl_seconds"`
	TTL        time.Duration `yaml:"-"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig holds the optional Prometheus textfile destination.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{
		API: APIConfig{
			UserAgent:      "pokemon-export/0.1.0",
			TimeoutSeconds: 30,
			PageSize:       20,
			Mode:           "paged",
		},
		Output: OutputConfig{Path: "results.csv"},
		Cache: CacheConfig{
			Backend:    CacheNone,
			RedisAddr:  "localhost:6379",
			TTLSeconds: 300,
		},
		Log: LogConfig{Level: "info"},
	}
	cfg.normalize()
	return cfg
}

// Load reads the configuration from the given path. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Cache.RedisAddr = v
	}
}

// normalize fills zero values with defaults and derives durations.
func (c *Config) normalize() {
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = 30
	}
	c.API.Timeout = time.Duration(c.API.TimeoutSeconds) * time.Second

	if c.API.PageSize <= 0 {
		c.API.PageSize = 20
	}
	if c.API.Mode == "" {
		c.API.Mode = "paged"
	}
	if c.API.Burst <= 0 {
		c.API.Burst = 1
	}

	if c.Output.Path == "" {
		c.Output.Path = "results.csv"
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheNone
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 300
	}
	c.Cache.TTL = time.Duration(c.Cache.TTLSeconds) * time.Second

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration is usable for a run.
func (c *Config) Validate() error {
	c.normalize()

	var problems []string
	if strings.TrimSpace(c.API.BaseURL) == "" {
		problems = append(problems, fmt.Sprintf("api.base_url is required (or set %s)", EnvBaseURL))
	}
	if _, err := pagination.ParseMode(c.API.Mode); err != nil {
		problems = append(problems, "api.mode: "+err.Error())
	}
	if c.API.RatePerSecond < 0 {
		problems = append(problems, fmt.Sprintf("api.rate_per_second must be >= 0 (got %g)", c.API.RatePerSecond))
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			problems = append(problems, "cache.redis_addr is required for the redis backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("cache.backend must be none, memory or redis (got %q)", c.Cache.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
