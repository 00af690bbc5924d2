// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Events.Backend != "memory" {
		t.Errorf("Events.Backend = %q, want memory", cfg.Events.Backend)
	}
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tator.yaml")
	yaml := `
server:
  port: 9000
database:
  driver: memory
api:
  max_bulk_create: 50
events:
  backend: nats
  url: nats://broker:4222
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("env should override file: port = %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "memory" || cfg.API.MaxBulkCreate != 50 {
		t.Errorf("file values not applied: %+v %+v", cfg.Database, cfg.API)
	}
	if cfg.Events.URL != "nats://broker:4222" {
		t.Errorf("Events.URL = %q", cfg.Events.URL)
	}
	if got := strings.Join(cfg.API.CORSOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("CORSOrigins = %q", got)
	}
	if cfg.Security.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.Security.TokenTTL)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("defaults should survive: timeout = %v", cfg.Server.Timeout)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Setenv("EVENTS_BACKEND", "kafka")
	if _, err := LoadFile(""); err == nil || !strings.Contains(err.Error(), "EVENTS_BACKEND") {
		t.Errorf("LoadFile() error = %v, want EVENTS_BACKEND failure", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "DATABASE_DRIVER"},
		{"duckdb without path", func(c *Config) { c.Database.Path = "" }, "DUCKDB_PATH"},
		{"page sizes", func(c *Config) { c.API.MaxPageSize = 1 }, "page sizes"},
		{"production secret", func(c *Config) { c.Server.Environment = "production" }, "JWT_SECRET"},
		{"admin pair", func(c *Config) { c.Security.AdminUsername = "admin" }, "ADMIN_PASSWORD"},
		{"nats url", func(c *Config) { c.Events.Backend = "nats"; c.Events.URL = "http://x" }, "NATS_URL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_EventsDisabledSkipsChecks(t *testing.T) {
	t.Parallel()
	cfg := defaultConfig()
	cfg.Events.Enabled = false
	cfg.Events.Backend = "bogus"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
