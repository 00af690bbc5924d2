// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"tator.yaml",
	"tator.yml",
	"/etc/tator/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8000,
			Host:         "0.0.0.0",
			Timeout:      30 * time.Second,
			Environment:  "development",
			MaxBodyBytes: 16 << 20,
		},
		Database: DatabaseConfig{
			Driver:    "duckdb",
			Path:      "/data/tator.duckdb",
			MaxMemory: "1GB",
		},
		API: APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     10000,
			MaxBulkCreate:   500,
			SchemaCacheSize: 256,
			SchemaCacheTTL:  5 * time.Minute,
			RateLimitReqs:   600,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Security: SecurityConfig{
			TokenTTL:           24 * time.Hour,
			TokenStorePath:     "/data/tokens",
			LoginRatePerMinute: 10,
			LoginBurst:         5,
			Casbin: CasbinConfig{
				CacheEnabled: true,
				CacheTTL:     time.Minute,
			},
		},
		Events: EventsConfig{
			Enabled:            true,
			Backend:            "memory",
			URL:                "nats://127.0.0.1:4222",
			StoreDir:           "/data/nats",
			Topic:              "tator.annotations",
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			ClientBuffer:       64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the first config file found
// and mapped environment variables, then validates it.
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields splits comma separated env values for slice settings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_port":          "server.port",
	"http_host":          "server.host",
	"http_timeout":       "server.timeout",
	"environment":        "server.environment",
	"max_body_bytes":     "server.max_body_bytes",
	"database_driver":    "database.driver",
	"duckdb_path":        "database.path",
	"duckdb_max_memory":  "database.max_memory",
	"duckdb_threads":     "database.threads",
	"api_page_size":      "api.default_page_size",
	"api_max_page_size":  "api.max_page_size",
	"max_bulk_create":    "api.max_bulk_create",
	"schema_cache_size":  "api.schema_cache_size",
	"schema_cache_ttl":   "api.schema_cache_ttl",
	"rate_limit_reqs":    "api.rate_limit_reqs",
	"rate_limit_window":  "api.rate_limit_window",
	"disable_rate_limit": "api.rate_limit_disabled",
	"cors_origins":       "api.cors_origins",
	"jwt_secret":         "security.jwt_secret",
	"token_ttl":          "security.token_ttl",
	"token_store_path":   "security.token_store_path",
	"admin_username":     "security.admin_username",
	"admin_password":     "security.admin_password",
	"login_rate":         "security.login_rate_per_minute",
	"login_burst":        "security.login_burst",
	"casbin_cache":       "security.casbin.cache_enabled",
	"casbin_cache_ttl":   "security.casbin.cache_ttl",
	"events_enabled":     "events.enabled",
	"events_backend":     "events.backend",
	"nats_url":           "events.url",
	"nats_embedded":      "events.embedded_server",
	"nats_store_dir":     "events.store_dir",
	"events_topic":       "events.topic",
	"log_level":          "logging.level",
	"log_format":         "logging.format",
	"log_caller":         "logging.caller",
}

// envTransformFunc maps known environment variables to config keys and
// drops everything else.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
