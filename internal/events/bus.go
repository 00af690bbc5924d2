// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tator-io/tator/internal/config"
	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/metrics"
)

// Backends accepted in config.EventsConfig.Backend.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// Metadata keys set on every published message.
const (
	MetaProject = "project"
	MetaEntity  = "entity"
	MetaAction  = "action"
)

const breakerName = "event-publisher"

// ErrClosed is returned by Notify after Close.
var ErrClosed = errors.New("event bus is closed")

// Bus publishes changes to one topic and hands out subscriptions to it.
// Publishing goes through a circuit breaker so a broker outage fails fast
// instead of stalling request handlers.
type Bus struct {
	pub     message.Publisher
	sub     message.Subscriber
	topic   string
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  watermill.LoggerAdapter

	mu      sync.RWMutex
	closed  bool
	closers []func() error
}

// NewBus connects the backend named by cfg.Backend. For the nats backend
// with EmbeddedServer set, an in-process NATS server is started first and
// shut down by Close.
func NewBus(cfg config.EventsConfig) (*Bus, error) {
	logger := logging.NewWatermillLogger()

	switch cfg.Backend {
	case "", BackendMemory:
		gc := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: int64(max(cfg.ClientBuffer, 1)),
		}, logger)
		b := newBus(gc, gc, cfg, logger)
		b.closers = append(b.closers, gc.Close)
		return b, nil

	case BackendNATS:
		url := cfg.URL
		var srv *EmbeddedServer
		if cfg.EmbeddedServer {
			var err error
			if srv, err = StartEmbeddedServer(ServerOptions{StoreDir: cfg.StoreDir}); err != nil {
				return nil, err
			}
			url = srv.ClientURL()
		}
		pub, sub, err := dialNATS(url, logger)
		if err != nil {
			if srv != nil {
				srv.Shutdown()
			}
			return nil, err
		}
		b := newBus(pub, sub, cfg, logger)
		b.closers = append(b.closers, pub.Close, sub.Close)
		if srv != nil {
			b.closers = append(b.closers, func() error { srv.Shutdown(); return nil })
		}
		return b, nil

	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

func newBus(pub message.Publisher, sub message.Subscriber, cfg config.EventsConfig, logger watermill.LoggerAdapter) *Bus {
	failures := cfg.BreakerMaxFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Bus{
		pub:    pub,
		sub:    sub,
		topic:  cfg.Topic,
		logger: logger,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.RecordBreakerTransition(name, from.String(), to.String(), float64(to))
				logging.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Event publisher circuit breaker changed state")
			},
		}),
	}
}

// dialNATS connects a core NATS publisher and subscriber. Change events
// feed live websocket streams, so there is no JetStream persistence or
// replay.
func dialNATS(url string, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	opts := []natsgo.Option{
		natsgo.Name("tator-events"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
	marshaler := &wmNats.NATSMarshaler{}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		Marshaler:   marshaler,
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create nats publisher: %w", err)
	}
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		CloseTimeout:     5 * time.Second,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      opts,
		Unmarshaler:      marshaler,
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create nats subscriber: %w", err)
	}
	return pub, sub, nil
}

// Notify publishes c. It implements Notifier.
func (b *Bus) Notify(ctx context.Context, c Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	data, err := Marshal(c)
	if err != nil {
		return err
	}
	msg := message.NewMessage(c.EventID, data)
	msg.Metadata.Set(MetaProject, strconv.FormatInt(c.Project, 10))
	msg.Metadata.Set(MetaEntity, c.Entity)
	msg.Metadata.Set(MetaAction, c.Action)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}
	msg.SetContext(ctx)

	_, err = b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.pub.Publish(b.topic, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", metrics.ErrBreakerOpen, err)
	}
	metrics.RecordEventPublish(c.Action, err)
	if err != nil {
		return fmt.Errorf("publish %s %s: %w", c.Entity, c.Action, err)
	}
	return nil
}

// Subscribe returns the messages published to the bus topic until ctx is
// canceled. Callers must Ack every message.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.sub.Subscribe(ctx, b.topic)
}

// BreakerState reports the publisher circuit breaker state, for health
// checks.
func (b *Bus) BreakerState() string {
	return b.breaker.State().String()
}

// Close releases the publisher, subscriber and embedded server.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Notifier = (*Bus)(nil)
