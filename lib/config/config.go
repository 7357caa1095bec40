// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local workstations attached to a device.
	Development Environment = "development"
	// Production is for lab and CI hosts.
	Production Environment = "production"
)

// EnvVar names the environment variable [Load] reads.
const EnvVar = "TRANSPORTD_CONFIG"

// Config is the daemon configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Server configures the listening endpoint.
	Server ServerConfig `yaml:"server"`

	// EventLog sizes the in-memory event log.
	EventLog EventLogConfig `yaml:"event_log"`

	// Cache configures the byte cache.
	Cache CacheConfig `yaml:"cache"`

	// Sampler configures the built-in host sampler.
	Sampler SamplerConfig `yaml:"sampler"`

	// Logging configures the daemon's structured logs.
	Logging LoggingConfig `yaml:"logging"`

	// Per-environment overrides, applied after the base config.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the fields that can be overridden per
// environment. Empty strings and zero values leave the base value.
type ConfigOverrides struct {
	Server  *ServerConfig  `yaml:"server,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
	Sampler *SamplerOverrides `yaml:"sampler,omitempty"`
}

// SamplerOverrides is the override form of SamplerConfig. A nil
// Enabled leaves the base value alone.
type SamplerOverrides struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Interval string `yaml:"interval,omitempty"`
}

// ServerConfig configures the listening endpoint.
type ServerConfig struct {
	// Address is the bind target: unix:/path, a path, tcp:host:port,
	// or host:port.
	// Default: unix:${XDG_RUNTIME_DIR:-/tmp}/transportd.sock
	Address string `yaml:"address"`
}

// EventLogConfig sizes the event log.
type EventLogConfig struct {
	// EventCapacity is the number of events retained.
	// Default: 500
	EventCapacity int `yaml:"event_capacity"`

	// GroupCapacity is the number of event groups retained.
	// Default: 100
	GroupCapacity int `yaml:"group_capacity"`

	// MemberCapacity bounds the events kept inside one group.
	// Default: same as EventCapacity
	MemberCapacity int `yaml:"member_capacity"`
}

// CacheConfig configures the byte cache.
type CacheConfig struct {
	// Capacity is the number of blobs retained.
	// Default: 64
	Capacity int `yaml:"capacity"`

	// Compression is one of none, lz4, zstd.
	// Default: zstd
	Compression string `yaml:"compression"`
}

// SamplerConfig configures the host sampler.
type SamplerConfig struct {
	// Enabled starts the sampler with the daemon.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval is the sampling period as a Go duration string.
	// Default: 1s
	Interval string `yaml:"interval"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is text, json, or auto (text on a terminal, JSON
	// otherwise).
	// Default: auto
	Format string `yaml:"format"`
}

// Default returns the configuration used as a base before the file is
// decoded, and as the whole configuration when no file is given.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Address: "unix:${XDG_RUNTIME_DIR:-/tmp}/transportd.sock",
		},
		EventLog: EventLogConfig{
			EventCapacity: 500,
			GroupCapacity: 100,
		},
		Cache: CacheConfig{
			Capacity:    64,
			Compression: "zstd",
		},
		Sampler: SamplerConfig{
			Enabled:  true,
			Interval: "1s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by TRANSPORTD_CONFIG.
// Fails when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your transportd config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, on top of [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.Finalize()

	return cfg, nil
}

// Finalize expands variables and fills derived defaults. LoadFile
// calls it; callers that build a Config from [Default] directly call
// it themselves.
func (c *Config) Finalize() {
	c.Server.Address = expandVars(c.Server.Address, map[string]string{
		"HOME": os.Getenv("HOME"),
	})
	if c.EventLog.MemberCapacity == 0 {
		c.EventLog.MemberCapacity = c.EventLog.EventCapacity
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// Stripped JSONC is plain JSON, which the YAML decoder
		// accepts as-is.
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Server != nil && overrides.Server.Address != "" {
		c.Server.Address = overrides.Server.Address
	}
	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}
	if overrides.Sampler != nil {
		if overrides.Sampler.Enabled != nil {
			c.Sampler.Enabled = *overrides.Sampler.Enabled
		}
		if overrides.Sampler.Interval != "" {
			c.Sampler.Interval = overrides.Sampler.Interval
		}
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, checking
// vars before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// SamplerInterval returns the parsed sampler interval.
func (c *Config) SamplerInterval() (time.Duration, error) {
	interval, err := time.ParseDuration(c.Sampler.Interval)
	if err != nil {
		return 0, fmt.Errorf("sampler.interval: %w", err)
	}
	return interval, nil
}

var (
	logLevels    = []string{"debug", "info", "warn", "error"}
	logFormats   = []string{"auto", "text", "json"}
	compressions = []string{"none", "lz4", "zstd"}
)

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Server.Address == "" {
		errs = append(errs, fmt.Errorf("server.address is required"))
	}
	if c.EventLog.EventCapacity <= 0 {
		errs = append(errs, fmt.Errorf("event_log.event_capacity must be positive, got %d", c.EventLog.EventCapacity))
	}
	if c.EventLog.GroupCapacity <= 0 {
		errs = append(errs, fmt.Errorf("event_log.group_capacity must be positive, got %d", c.EventLog.GroupCapacity))
	}
	if c.EventLog.MemberCapacity < 0 {
		errs = append(errs, fmt.Errorf("event_log.member_capacity must not be negative, got %d", c.EventLog.MemberCapacity))
	}
	if c.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity))
	}
	if !slices.Contains(compressions, c.Cache.Compression) {
		errs = append(errs, fmt.Errorf("cache.compression must be one of: %v", compressions))
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", logFormats))
	}
	if c.Sampler.Enabled {
		if interval, err := c.SamplerInterval(); err != nil {
			errs = append(errs, err)
		} else if interval <= 0 {
			errs = append(errs, fmt.Errorf("sampler.interval must be positive, got %s", interval))
		}
	}

	return errors.Join(errs...)
}
