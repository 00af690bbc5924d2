// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package config

import (
	"fmt"
	"net/url"
)

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "memory":
		return nil
	case "duckdb":
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DATABASE_DRIVER=duckdb")
		}
		if c.Database.Threads < 0 {
			return fmt.Errorf("DUCKDB_THREADS cannot be negative")
		}
		return nil
	default:
		return fmt.Errorf("DATABASE_DRIVER must be duckdb or memory, got %q", c.Database.Driver)
	}
}

func (c *Config) validateAPI() error {
	a := c.API
	if a.DefaultPageSize < 1 || a.MaxPageSize < a.DefaultPageSize {
		return fmt.Errorf("page sizes must satisfy 1 <= API_PAGE_SIZE <= API_MAX_PAGE_SIZE")
	}
	if a.MaxBulkCreate < 1 {
		return fmt.Errorf("MAX_BULK_CREATE must be at least 1")
	}
	if !a.RateLimitDisabled && (a.RateLimitReqs < 1 || a.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if c.IsProduction() && len(s.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if s.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if s.LoginRatePerMinute < 1 || s.LoginBurst < 1 {
		return fmt.Errorf("LOGIN_RATE and LOGIN_BURST must be at least 1")
	}
	if (s.AdminUsername == "") != (s.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := c.Events
	if !e.Enabled {
		return nil
	}
	if e.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when events are enabled")
	}
	if e.ClientBuffer < 1 {
		return fmt.Errorf("events client buffer must be at least 1")
	}
	switch e.Backend {
	case "memory":
		return nil
	case "nats":
		u, err := url.Parse(e.URL)
		if err != nil || u.Scheme != "nats" || u.Host == "" {
			return fmt.Errorf("NATS_URL must look like nats://host:port, got %q", e.URL)
		}
		if e.EmbeddedServer && e.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
		}
		return nil
	default:
		return fmt.Errorf("EVENTS_BACKEND must be memory or nats, got %q", e.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		return nil
	}
	return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
}
