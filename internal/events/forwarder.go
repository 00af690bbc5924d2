// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package events

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tator-io/tator/internal/logging"
)

// Broadcaster receives every change read from the bus.
type Broadcaster interface {
	Broadcast(c Change)
}

// Subscriber is the part of Bus the forwarder needs.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// Forwarder copies changes from a subscription to a Broadcaster. It is a
// suture service: Serve returns when ctx is canceled or the subscription
// ends, and the supervisor restarts it in the latter case.
type Forwarder struct {
	sub Subscriber
	out Broadcaster
}

func NewForwarder(sub Subscriber, out Broadcaster) *Forwarder {
	return &Forwarder{sub: sub, out: out}
}

// Serve implements suture.Service.
func (f *Forwarder) Serve(ctx context.Context) error {
	msgs, err := f.sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	logger := logging.WithComponent("change-forwarder")
	logger.Info().Msg("Forwarding annotation changes to websocket clients")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("change subscription closed")
			}
			f.handle(msg)
		}
	}
}

// handle acks malformed payloads too; redelivering them cannot succeed.
func (f *Forwarder) handle(msg *message.Message) {
	defer msg.Ack()
	c, err := Unmarshal(msg.Payload)
	if err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed change event")
		return
	}
	f.out.Broadcast(c)
}

func (f *Forwarder) String() string { return "change-forwarder" }
