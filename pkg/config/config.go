// Package config loads mindweave configuration from a TOML file with
// environment variable overrides for secrets.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mindweave/mindweave/pkg/errors"
)

// Default values applied when the config file is absent or partial.
const (
	DefaultCacheBackend = "file"
	DefaultStoreBackend = "memory"
	DefaultRedisAddr    = "localhost:6379"
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultListenAddr   = ":8080"
)

// Config is the full mindweave configuration.
type Config struct {
	GenAI  GenAIConfig  `toml:"genai"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// GenAIConfig configures the map generation service client.
type GenAIConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file, redis, none
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Backend  string `toml:"backend"` // memory, file, mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from path. A missing file is not an error:
// defaults are returned so the CLI works without any setup. Environment
// variables override file values for secrets.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to defaults.
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file")
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file")
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location,
// honoring XDG_CONFIG_HOME.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mindweave", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "mindweave.toml")
	}
	return filepath.Join(home, ".config", "mindweave", "config.toml")
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MINDWEAVE_API_KEY"); v != "" {
		c.GenAI.APIKey = v
	}
	if v := os.Getenv("MINDWEAVE_BASE_URL"); v != "" {
		c.GenAI.BaseURL = v
	}
	if v := os.Getenv("MINDWEAVE_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("MINDWEAVE_MONGO_URI"); v != "" {
		c.Store.MongoURI = v
	}
}

func (c *Config) applyDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = DefaultRedisAddr
	}
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultStoreBackend
	}
	if c.Store.MongoURI == "" {
		c.Store.MongoURI = DefaultMongoURI
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultListenAddr
	}
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"cache backend must be one of: file, redis, none (got %q)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "memory", "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"store backend must be one of: memory, file, mongo (got %q)", c.Store.Backend)
	}
	return nil
}
