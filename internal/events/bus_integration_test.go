// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

//go:build integration

package events

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tator-io/tator/internal/testinfra"
)

func TestBus_ExternalNATS(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	nc, err := testinfra.NewNATSContainer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer testinfra.CleanupContainer(t, ctx, nc)

	cfg := memoryConfig()
	cfg.Backend = BackendNATS
	cfg.URL = nc.URL
	bus, err := NewBus(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = bus.Close() })

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	msgs, err := bus.Subscribe(subCtx)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []Change{
		NewChange(5, EntityLocalization, ActionCreated, 1, 100, 101),
		NewChange(5, EntityMedia, ActionUpdated, 1, 9),
	} {
		if err := bus.Notify(ctx, want); err != nil {
			t.Fatal(err)
		}
		got := receive(t, msgs)
		if got.EventID != want.EventID || !cmp.Equal(got.IDs, want.IDs) || got.Entity != want.Entity {
			t.Errorf("received %+v, want %+v", got, want)
		}
	}
	if state := bus.BreakerState(); state != "closed" {
		t.Errorf("breaker = %q after successful publishes", state)
	}
}
