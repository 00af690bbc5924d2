// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flakyService fails its first run and then blocks until canceled.
type flakyService struct {
	runs atomic.Int32
	up   chan struct{}
}

func (s *flakyService) Serve(ctx context.Context) error {
	if s.runs.Add(1) == 1 {
		return errors.New("boom")
	}
	close(s.up)
	<-ctx.Done()
	return ctx.Err()
}

func TestTree_RestartsFailedService(t *testing.T) {
	t.Parallel()

	tree := NewTree(quietLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	svc := &flakyService{up: make(chan struct{})}
	tree.AddRealtimeService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	select {
	case <-svc.up:
	case <-time.After(5 * time.Second):
		t.Fatal("service was not restarted")
	}
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
	if n := svc.runs.Load(); n != 2 {
		t.Errorf("service ran %d times, want 2", n)
	}
}

func TestTreeConfig_Defaults(t *testing.T) {
	t.Parallel()
	tree := NewTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
	want := DefaultTreeConfig()
	want.FailureBackoff = time.Second
	if tree.config != want {
		t.Errorf("config = %+v, want %+v", tree.config, want)
	}
}

type fakeServer struct {
	stop     chan struct{}
	listen   error
	shutdown atomic.Bool
}

func (f *fakeServer) ListenAndServe() error {
	if f.listen != nil {
		return f.listen
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdown.Store(true)
	close(f.stop)
	return nil
}

func TestHTTPService(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown", func(t *testing.T) {
		t.Parallel()
		srv := &fakeServer{stop: make(chan struct{})}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- NewHTTPService(srv, time.Second).Serve(ctx) }()

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if !srv.shutdown.Load() {
			t.Error("Shutdown was not called")
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		t.Parallel()
		srv := &fakeServer{stop: make(chan struct{}), listen: errors.New("address in use")}
		err := NewHTTPService(srv, 0).Serve(context.Background())
		if err == nil || srv.shutdown.Load() {
			t.Errorf("Serve() = %v, shutdown = %v", err, srv.shutdown.Load())
		}
	})
}
