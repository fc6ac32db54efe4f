// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package client maintains the connection to the beamline control runtime.
//
// The runtime publishes its live namespace over a websocket feed. The client
// keeps one connection open, replaces the namespace store snapshot on every
// update, and reconnects with rate-limited retries when the feed drops. The
// rest of the server never blocks on the runtime: providers read whatever
// snapshot is current.
package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/config"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
)

// Client owns the runtime connection lifecycle.
//
// Description:
//
//	A Client starts uninitialized. Start installs a configuration and
//	spawns the connection loop; calling Start again with an identical
//	configuration is a no-op, while a changed configuration tears the
//	current connection down and reconnects with the new settings. The
//	config watcher drives exactly that on file changes.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Client struct {
	store  *namespace.Store
	dialer *websocket.Dialer

	mu      sync.Mutex
	cfg     config.Runtime
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewClient creates a client publishing into the given store.
func NewClient(store *namespace.Store) *Client {
	return &Client{
		store:  store,
		dialer: websocket.DefaultDialer,
	}
}

// Start applies a runtime configuration.
//
// Description:
//
//	Idempotent: an unchanged configuration leaves the current connection
//	alone. A changed one stops the running loop, waits for it to exit,
//	and starts a fresh loop. An empty endpoint means the client stays
//	down until a later Start provides one; the last published snapshot
//	remains readable.
//
// Inputs:
//
//	ctx - Parent context; cancelling it stops the connection loop.
//	cfg - Runtime connection settings.
func (c *Client) Start(ctx context.Context, cfg config.Runtime) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started && c.cfg == cfg {
		return
	}
	c.stopLocked()

	c.cfg = cfg
	c.started = true
	if cfg.Endpoint == "" {
		slog.Info("runtime client idle, no endpoint configured")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		c.run(loopCtx, cfg)
	}()
}

// Stop tears down the connection loop. Safe to call multiple times.
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.started = false
}

// stopLocked cancels the loop and waits for it. Caller holds c.mu.
func (c *Client) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
		c.cancel = nil
		c.done = nil
	}
}

// run is the reconnect loop. Each iteration dials once and pumps messages
// until the connection drops or the context ends.
func (c *Client) run(ctx context.Context, cfg config.Runtime) {
	interval := cfg.ReconnectInterval
	if interval <= 0 {
		interval = time.Second
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		connID := uuid.NewString()
		if err := c.connect(ctx, cfg, connID); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("runtime connection lost",
				"conn_id", connID,
				"endpoint", cfg.Endpoint,
				"error", err)
		}
	}
}

// connect dials the feed and pumps messages until failure.
func (c *Client) connect(ctx context.Context, cfg config.Runtime, connID string) error {
	dialer := *c.dialer
	dialer.HandshakeTimeout = cfg.HandshakeTimeout

	conn, _, err := dialer.DialContext(ctx, cfg.Endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	slog.Info("runtime connected",
		"conn_id", connID,
		"endpoint", cfg.Endpoint)

	// Unblock ReadMessage when the context ends.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		mapping, err := decodeMessage(data)
		if err != nil {
			slog.Debug("runtime message dropped",
				"conn_id", connID,
				"error", err)
			continue
		}
		if mapping == nil {
			continue // heartbeat
		}

		c.store.Replace(mapping)
		slog.Debug("namespace snapshot replaced",
			"conn_id", connID,
			"version", c.store.Version(),
			"top_level", len(mapping))
	}
}
