// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Discord   DiscordConfig   `yaml:"discord"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Challenge ChallengeConfig `yaml:"challenge"`
	Redis     RedisConfig     `yaml:"redis"`
}

// ServerConfig contains server-level settings
type ServerConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// DiscordConfig contains the platform credentials and endpoints
type DiscordConfig struct {
	// PublicKey is the hex-encoded Ed25519 verification key published
	// for the application. Required.
	PublicKey string `yaml:"public_key"`

	// AppID is the application id (needed for command registration).
	AppID string `yaml:"app_id"`

	// BotToken authorizes outbound API calls (command registration).
	// Prefer supplying it via INTERACTIONS_BOT_TOKEN.
	BotToken string `yaml:"bot_token,omitempty"`

	// APIBase overrides the platform API root (useful for testing).
	APIBase string `yaml:"api_base,omitempty"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RateLimitConfig controls rate limiting
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min"`
}

// MetricsConfig controls the metrics endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ChallengeConfig controls the challenge store and acceptance policy
type ChallengeConfig struct {
	// Store selects the backing store: "memory" or "redis".
	Store string `yaml:"store"`

	// TTL is how long an issued challenge remains acceptable.
	TTL Duration `yaml:"ttl"`

	// CleanupInterval is how often the memory store sweeps expired
	// entries.
	CleanupInterval Duration `yaml:"cleanup_interval"`

	// RejectSelfAccept makes accepting one's own challenge an error
	// reply instead of a normal acceptance.
	RejectSelfAccept bool `yaml:"reject_self_accept"`
}

// RedisConfig contains Redis store settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// Store backend names.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Load reads configuration from a YAML file and applies environment
// variable overrides and defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with defaults applied, for callers
// that configure entirely through the environment.
func Default() *Config {
	cfg := &Config{}
	applyEnvOverrides(cfg)
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in unset fields.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(15 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Challenge.Store == "" {
		c.Challenge.Store = StoreMemory
	}
	if c.Challenge.TTL == 0 {
		c.Challenge.TTL = Duration(15 * time.Minute)
	}
	if c.Challenge.CleanupInterval == 0 {
		c.Challenge.CleanupInterval = Duration(time.Minute)
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("INTERACTIONS_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("INTERACTIONS_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port >= 1 && port <= 65535 {
			cfg.Server.Port = port
		}
	}
	// PORT is honored for parity with common hosting platforms.
	if portStr := os.Getenv("PORT"); portStr != "" && os.Getenv("INTERACTIONS_PORT") == "" {
		if port, err := strconv.Atoi(portStr); err == nil && port >= 1 && port <= 65535 {
			cfg.Server.Port = port
		}
	}

	if key := os.Getenv("INTERACTIONS_PUBLIC_KEY"); key != "" {
		cfg.Discord.PublicKey = key
	}
	if appID := os.Getenv("INTERACTIONS_APP_ID"); appID != "" {
		cfg.Discord.AppID = appID
	}
	if token := os.Getenv("INTERACTIONS_BOT_TOKEN"); token != "" {
		cfg.Discord.BotToken = token
	}
	if apiBase := os.Getenv("INTERACTIONS_API_BASE"); apiBase != "" {
		cfg.Discord.APIBase = apiBase
	}

	if level := os.Getenv("INTERACTIONS_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("INTERACTIONS_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if store := os.Getenv("INTERACTIONS_CHALLENGE_STORE"); store != "" {
		cfg.Challenge.Store = store
	}
	if addr := os.Getenv("INTERACTIONS_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("INTERACTIONS_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Discord.PublicKey == "" {
		return fmt.Errorf("discord public_key is required")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, error, or fatal)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	switch c.Challenge.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required when challenge store is %q", StoreRedis)
		}
	default:
		return fmt.Errorf("invalid challenge store: %s (must be %s or %s)", c.Challenge.Store, StoreMemory, StoreRedis)
	}

	if c.Challenge.TTL < 0 {
		return fmt.Errorf("challenge ttl must not be negative")
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMin <= 0 {
		return fmt.Errorf("ratelimit requests_per_min must be positive when enabled")
	}

	return nil
}
