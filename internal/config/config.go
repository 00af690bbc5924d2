// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package config loads server configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import "time"

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`

	// MaxBodyBytes caps request bodies read by the parameter parser.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// DatabaseConfig selects the annotation store. Driver "memory" keeps
// everything in process and is meant for development and tests.
type DatabaseConfig struct {
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// MaxBulkCreate limits the number of localizations in one "many" request.
	MaxBulkCreate int `koanf:"max_bulk_create"`

	// SchemaCacheSize bounds cached attribute schemas; negative disables.
	SchemaCacheSize int           `koanf:"schema_cache_size"`
	SchemaCacheTTL  time.Duration `koanf:"schema_cache_ttl"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

type SecurityConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// TokenStorePath is the badger directory for API tokens. Empty runs
	// badger in memory.
	TokenStorePath string `koanf:"token_store_path"`

	// Bootstrap superuser, created on first start when both are set.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// LoginRatePerMinute and LoginBurst throttle password logins per username.
	LoginRatePerMinute int `koanf:"login_rate_per_minute"`
	LoginBurst         int `koanf:"login_burst"`

	Casbin CasbinConfig `koanf:"casbin"`
}

type CasbinConfig struct {
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// EventsConfig controls annotation change events. Backend "memory" uses an
// in-process watermill channel; "nats" publishes to core NATS at URL, optionally
// served by an embedded nats-server.
type EventsConfig struct {
	Enabled        bool   `koanf:"enabled"`
	Backend        string `koanf:"backend"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	Topic          string `koanf:"topic"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`

	// ClientBuffer is the per websocket client send queue length.
	ClientBuffer int `koanf:"client_buffer"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether stricter checks apply.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
