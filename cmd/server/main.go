// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/api"
	"github.com/tator-io/tator/internal/auth"
	"github.com/tator-io/tator/internal/authz"
	"github.com/tator-io/tator/internal/config"
	"github.com/tator-io/tator/internal/database"
	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/store"
	"github.com/tator-io/tator/internal/supervisor"
	"github.com/tator-io/tator/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Server stopped")
}

//nolint:gocyclo // Sequential wiring of the server components
func run(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Driver).
		Msg("Starting Tator")

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	// Change events are optional. Without them nothing is published and the
	// change stream endpoint answers 503.
	var (
		notifier events.Notifier = events.Discard
		bus      *events.Bus
		hub      *websocket.Hub
	)
	if cfg.Events.Enabled {
		if bus, err = events.NewBus(cfg.Events); err != nil {
			return fmt.Errorf("failed to start event bus: %w", err)
		}
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
		notifier = bus
		hub = websocket.NewHub(cfg.Events.ClientBuffer)
		logging.Info().Str("backend", cfg.Events.Backend).Msg("Change events enabled")
	}

	jm, err := auth.NewJWTManager(cfg.Security)
	if err != nil {
		return err
	}
	tokens, err := auth.OpenTokenStore(cfg.Security.TokenStorePath)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing token store")
		}
	}()
	authn := auth.NewAuthenticator(st, jm, tokens,
		auth.NewLoginLimiter(cfg.Security.LoginRatePerMinute, cfg.Security.LoginBurst))
	if err := authn.Bootstrap(ctx, cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
		return err
	}

	enforcer, err := authz.New(st, cfg.Security.Casbin)
	if err != nil {
		return err
	}
	defer enforcer.Close()

	svc := annotation.NewService(st, notifier, annotation.Options{
		MaxBulkCreate:   cfg.API.MaxBulkCreate,
		SchemaCacheSize: cfg.API.SchemaCacheSize,
		SchemaCacheTTL:  cfg.API.SchemaCacheTTL,
	})
	opts := api.Options{
		Service:      svc,
		Auth:         authn,
		Authz:        enforcer,
		API:          cfg.API,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Version:      version,
	}
	// A nil *Bus must not become a non-nil interface.
	if bus != nil {
		opts.Hub = hub
		opts.Events = bus
	}
	handler, err := api.New(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Websocket streams are long lived; the hub enforces its own
		// write deadlines.
		WriteTimeout: 0,
		IdleTimeout:  2 * time.Minute,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if bus != nil {
		tree.AddRealtimeService(hub)
		tree.AddRealtimeService(events.NewForwarder(bus, hub))
	}
	tree.AddAPIService(supervisor.NewHTTPService(srv, 10*time.Second))

	logging.Info().Str("addr", srv.Addr).Msg("Listening")
	err = tree.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, s := range report {
			logging.Warn().Str("service", s.Name).Msg("Service did not stop in time")
		}
	}
	return err
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		logging.Warn().Msg("Using the in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	default:
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized")
		return db, nil
	}
}
