// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/go-cmp/cmp"

	"github.com/tator-io/tator/internal/config"
	"github.com/tator-io/tator/internal/metrics"
)

func memoryConfig() config.EventsConfig {
	return config.EventsConfig{
		Enabled:      true,
		Backend:      BackendMemory,
		Topic:        "tator.test",
		ClientBuffer: 8,
	}
}

func TestUnmarshal_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"project":`},
		{"newer schema", `{"schema_version":2,"event_id":"e","project":1,"entity":"state","action":"created"}`},
		{"unknown action", `{"schema_version":1,"event_id":"e","project":1,"entity":"state","action":"renamed"}`},
		{"missing project", `{"schema_version":1,"event_id":"e","entity":"state","action":"created"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Unmarshal([]byte(tt.payload)); err == nil {
				t.Error("Unmarshal() succeeded, want error")
			}
		})
	}
}

func TestMarshal_RejectsInvalidChange(t *testing.T) {
	t.Parallel()
	var verr *ValidationError
	if _, err := Marshal(Change{EventID: "e", Project: 1, Entity: EntityState, Action: "bogus"}); !errors.As(err, &verr) {
		t.Errorf("Marshal() error = %v, want ValidationError", err)
	}
}

func receive(t *testing.T, msgs <-chan *message.Message) Change {
	t.Helper()
	select {
	case msg := <-msgs:
		msg.Ack()
		c, err := Unmarshal(msg.Payload)
		if err != nil {
			t.Fatal(err)
		}
		if msg.Metadata.Get(MetaEntity) != c.Entity {
			t.Errorf("entity metadata = %q, want %q", msg.Metadata.Get(MetaEntity), c.Entity)
		}
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	return Change{}
}

func TestBus_MemoryDelivers(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(memoryConfig())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := NewChange(7, EntityLocalization, ActionCreated, 3, 11, 12)
	if err := bus.Notify(ctx, want); err != nil {
		t.Fatal(err)
	}
	got := receive(t, msgs)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("change mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_ClosedRejects(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(memoryConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := bus.Notify(context.Background(), NewChange(1, EntityMedia, ActionDeleted, 1, 1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Notify() after Close = %v, want ErrClosed", err)
	}
}

func TestNewBus_UnknownBackend(t *testing.T) {
	t.Parallel()
	cfg := memoryConfig()
	cfg.Backend = "kafka"
	if _, err := NewBus(cfg); err == nil {
		t.Error("NewBus() succeeded for an unknown backend")
	}
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(string, ...*message.Message) error {
	p.calls++
	return errors.New("broker unreachable")
}

func (p *failingPublisher) Close() error { return nil }

func TestBus_BreakerOpens(t *testing.T) {
	t.Parallel()

	pub := &failingPublisher{}
	cfg := memoryConfig()
	cfg.BreakerMaxFailures = 2
	cfg.BreakerTimeout = time.Minute
	bus := newBus(pub, nil, cfg, watermill.NopLogger{})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := bus.Notify(ctx, NewChange(1, EntityState, ActionUpdated, 1, 5))
		if err == nil || errors.Is(err, metrics.ErrBreakerOpen) {
			t.Fatalf("publish %d: error = %v, want broker failure", i, err)
		}
	}
	err := bus.Notify(ctx, NewChange(1, EntityState, ActionUpdated, 1, 5))
	if !errors.Is(err, metrics.ErrBreakerOpen) {
		t.Errorf("error = %v, want ErrBreakerOpen", err)
	}
	if pub.calls != 2 {
		t.Errorf("publisher called %d times, want 2", pub.calls)
	}
	if got := bus.BreakerState(); got != "open" {
		t.Errorf("BreakerState() = %q, want open", got)
	}
}

type fakeSubscriber struct{ ch chan *message.Message }

func (f *fakeSubscriber) Subscribe(context.Context) (<-chan *message.Message, error) {
	return f.ch, nil
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	changes []Change
	got     chan struct{}
}

func (r *recordingBroadcaster) Broadcast(c Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
	r.got <- struct{}{}
}

func TestForwarder(t *testing.T) {
	t.Parallel()

	sub := &fakeSubscriber{ch: make(chan *message.Message, 2)}
	out := &recordingBroadcaster{got: make(chan struct{}, 2)}
	f := NewForwarder(sub, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Serve(ctx) }()

	bad := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	sub.ch <- bad
	change := NewChange(4, EntityMedia, ActionCreated, 2, 9)
	payload, err := Marshal(change)
	if err != nil {
		t.Fatal(err)
	}
	good := message.NewMessage(change.EventID, payload)
	sub.ch <- good

	select {
	case <-out.got:
	case <-time.After(5 * time.Second):
		t.Fatal("change was not forwarded")
	}
	for _, msg := range []*message.Message{bad, good} {
		select {
		case <-msg.Acked():
		case <-time.After(5 * time.Second):
			t.Fatalf("message %s was not acked", msg.UUID)
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	out.mu.Lock()
	defer out.mu.Unlock()
	if len(out.changes) != 1 || out.changes[0].EventID != change.EventID {
		t.Errorf("forwarded %+v", out.changes)
	}
}

func TestForwarder_SubscriptionClosed(t *testing.T) {
	t.Parallel()

	sub := &fakeSubscriber{ch: make(chan *message.Message)}
	close(sub.ch)
	err := NewForwarder(sub, &recordingBroadcaster{got: make(chan struct{}, 1)}).Serve(context.Background())
	if err == nil || errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want subscription closed error", err)
	}
}

func TestBus_EmbeddedNATS(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a NATS server")
	}
	t.Parallel()

	cfg := memoryConfig()
	cfg.Backend = BackendNATS
	cfg.EmbeddedServer = true
	cfg.StoreDir = t.TempDir()
	bus, err := NewBus(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := NewChange(2, EntityState, ActionDeleted, 1, 40)
	if err := bus.Notify(ctx, want); err != nil {
		t.Fatal(err)
	}
	if got := receive(t, msgs); got.EventID != want.EventID || !cmp.Equal(got.IDs, want.IDs) {
		t.Errorf("received %+v, want %+v", got, want)
	}
}
