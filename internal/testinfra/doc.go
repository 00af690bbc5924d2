// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package testinfra starts Docker containers for integration tests with
// testcontainers-go.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/events/...
//
// # NATS Container
//
// NewNATSContainer runs a stock nats-server and exposes its client URL:
//
//	func TestBusOverNATS(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    nc, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, nc)
//
//	    bus, err := events.NewBus(config.EventsConfig{Backend: "nats", URL: nc.URL})
//	    ...
//	}
//
// Tests skip when no Docker daemon is reachable.
package testinfra
