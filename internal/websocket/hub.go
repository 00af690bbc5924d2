// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/metrics"
)

// Message types sent to clients.
const (
	MessageTypeChange = "change"
	MessageTypePing   = "ping"
	MessageTypePong   = "pong"
)

// Message is one frame on the wire.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub tracks connected clients and fans changes out to the clients watching
// the changed project.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan events.Change
	register   chan *Client
	unregister chan *Client
	clientBuf  int
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub returns a hub whose clients queue up to clientBuffer messages
// before they are dropped as too slow.
func NewHub(clientBuffer int) *Hub {
	if clientBuffer < 1 {
		clientBuffer = 64
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan events.Change, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clientBuf:  clientBuffer,
		done:       make(chan struct{}),
	}
}

// Serve runs the hub until ctx is canceled, then closes every client. It
// implements suture.Service.
//
// Register and unregister are drained before broadcasts so a client never
// misses a change published after it connected.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.register:
			h.add(c)
			continue
		case c := <-h.unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case change := <-h.broadcast:
			h.deliver(change)
		}
	}
}

func (h *Hub) String() string { return "websocket-hub" }

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Inc()
	logging.Debug().Int64("project", c.project).Int("total_clients", n).Msg("Websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.WSConnections.Dec()
		logging.Debug().Int64("project", c.project).Int("total_clients", n).Msg("Websocket client disconnected")
	}
}

// deliver sends change to the clients of its project in connection order.
// A client whose queue is full is disconnected.
func (h *Hub) deliver(change events.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.project == change.Project {
			targets = append(targets, c)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	msg := Message{Type: MessageTypeChange, Data: change}
	for _, c := range targets {
		select {
		case c.send <- msg:
			metrics.WSMessagesSent.Inc()
		default:
			metrics.WSMessagesDropped.Inc()
			close(c.send)
			delete(h.clients, c)
			metrics.WSConnections.Dec()
			logging.Warn().Uint64("client", c.id).Int64("project", c.project).Msg("Dropping slow websocket client")
		}
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
	h.mu.Lock()
	n := len(h.clients)
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	metrics.WSConnections.Sub(float64(n))
	logging.Info().Str("component", "websocket-hub").Int("clients_closed", n).Msg("Websocket hub stopped")
}

// Broadcast queues a change for delivery. It never blocks; when the queue
// is full the change is dropped. It implements events.Broadcaster.
func (h *Hub) Broadcast(change events.Change) {
	select {
	case h.broadcast <- change:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Int64("project", change.Project).Msg("Websocket broadcast queue full, dropping change")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ events.Broadcaster = (*Hub)(nil)
