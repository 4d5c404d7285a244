// Package config loads bridge configuration from YAML with environment
// overrides for the settings that vary per deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full bridge configuration.
type Config struct {
	Relay    RelayConfig    `yaml:"relay"`
	Serve    ServeConfig    `yaml:"serve"`
	Redis    RedisConfig    `yaml:"redis"`
	Stencils StencilsConfig `yaml:"stencils"`
	LogLevel string         `yaml:"log_level"`
}

// RelayConfig controls the link to the privileged host process.
type RelayConfig struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryReads bool          `yaml:"retry_reads"`
}

// ServeConfig controls the bridge's own listeners.
type ServeConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	SSEAddr  string `yaml:"sse_addr"`
	BaseURL  string `yaml:"base_url"`
}

// RedisConfig enables the Redis-backed registry store and document locker
// when Address is set.
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

// StencilsConfig points the catalog at local documentation and search paths.
type StencilsConfig struct {
	CatalogDir  string   `yaml:"catalog_dir"`
	SearchPaths []string `yaml:"search_paths"`
}

// Default returns the configuration for a stock single-instance deployment.
func Default() *Config {
	return &Config{
		Relay: RelayConfig{
			URL:        "http://localhost:8051",
			Timeout:    30 * time.Second,
			RetryReads: true,
		},
		Serve: ServeConfig{
			HTTPAddr: ":8050",
			SSEAddr:  ":8052",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Relay.Timeout <= 0 {
		cfg.Relay.Timeout = 30 * time.Second
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VISIO_RELAY_URL"); v != "" {
		c.Relay.URL = v
	}
	if v := os.Getenv("VISIO_RELAY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Relay.Timeout = d
		}
	}
	if v := os.Getenv("VISIO_REDIS_ADDR"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("VISIO_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
	if v := os.Getenv("VISIO_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
