// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/config"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
)

func TestDecodeMessage(t *testing.T) {
	t.Run("namespace update", func(t *testing.T) {
		data := []byte(`{
			"event": "namespace",
			"namespace": {
				"dev": {"name": "dev", "kind": "namespace", "items": {
					"samx": {"name": "samx", "kind": "device", "enabled": true}
				}}
			}
		}`)
		mapping, err := decodeMessage(data)
		require.NoError(t, err)
		require.NotNil(t, mapping)
		obj, ok := namespace.Resolve("dev.samx", mapping)
		require.True(t, ok)
		assert.Equal(t, namespace.KindDevice, obj.Kind)
		assert.True(t, obj.Enabled)
	})

	t.Run("empty namespace clears", func(t *testing.T) {
		mapping, err := decodeMessage([]byte(`{"event": "namespace"}`))
		require.NoError(t, err)
		require.NotNil(t, mapping)
		assert.Empty(t, mapping)
	})

	t.Run("heartbeat is skipped", func(t *testing.T) {
		mapping, err := decodeMessage([]byte(`{"event": "heartbeat"}`))
		require.NoError(t, err)
		assert.Nil(t, mapping)
	})

	t.Run("unknown event rejected", func(t *testing.T) {
		_, err := decodeMessage([]byte(`{"event": "scan_progress"}`))
		assert.True(t, errors.Is(err, ErrUnknownEvent))
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, err := decodeMessage([]byte(`{`))
		assert.Error(t, err)
	})
}

// feedServer serves one websocket connection per request, sending each
// payload in order and then holding the connection open.
func feedServer(t *testing.T, payloads ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, p := range payloads {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(p)); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitForVersion(t *testing.T, store *namespace.Store, min uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if store.Version() >= min {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("store never reached version %d, at %d", min, store.Version())
}

func TestClient_PublishesSnapshots(t *testing.T) {
	srv := feedServer(t,
		`{"event": "heartbeat"}`,
		`{"event": "namespace", "namespace": {"dev": {"name": "dev", "kind": "namespace"}}}`,
		`{"event": "namespace", "namespace": {}}`,
	)

	store := namespace.NewStore()
	c := NewClient(store)
	defer c.Stop()

	c.Start(context.Background(), config.Runtime{
		Endpoint:          wsURL(srv),
		ReconnectInterval: 50 * time.Millisecond,
		HandshakeTimeout:  time.Second,
	})

	waitForVersion(t, store, 2)
	assert.Empty(t, store.Snapshot())
}

func TestClient_StartIdempotent(t *testing.T) {
	srv := feedServer(t,
		`{"event": "namespace", "namespace": {"dev": {"name": "dev", "kind": "namespace"}}}`,
	)

	store := namespace.NewStore()
	c := NewClient(store)
	defer c.Stop()

	cfg := config.Runtime{
		Endpoint:          wsURL(srv),
		ReconnectInterval: 50 * time.Millisecond,
		HandshakeTimeout:  time.Second,
	}
	ctx := context.Background()

	c.Start(ctx, cfg)
	waitForVersion(t, store, 1)

	// Same config must not reconnect or disturb the snapshot.
	version := store.Version()
	c.Start(ctx, cfg)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, version, store.Version())
	_, ok := store.Snapshot()["dev"]
	assert.True(t, ok)
}

func TestClient_RestartOnConfigChange(t *testing.T) {
	first := feedServer(t,
		`{"event": "namespace", "namespace": {"old": {"name": "old", "kind": "namespace"}}}`,
	)
	second := feedServer(t,
		`{"event": "namespace", "namespace": {"new": {"name": "new", "kind": "namespace"}}}`,
	)

	store := namespace.NewStore()
	c := NewClient(store)
	defer c.Stop()

	ctx := context.Background()
	cfg := config.Runtime{
		Endpoint:          wsURL(first),
		ReconnectInterval: 50 * time.Millisecond,
		HandshakeTimeout:  time.Second,
	}
	c.Start(ctx, cfg)
	waitForVersion(t, store, 1)

	cfg.Endpoint = wsURL(second)
	c.Start(ctx, cfg)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := store.Snapshot()["new"]; ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("snapshot from the new endpoint never arrived")
}

func TestClient_EmptyEndpointStaysIdle(t *testing.T) {
	store := namespace.NewStore()
	store.Replace(namespace.Mapping{"dev": {Name: "dev", Kind: namespace.KindNamespace}})

	c := NewClient(store)
	defer c.Stop()

	c.Start(context.Background(), config.Runtime{})
	time.Sleep(50 * time.Millisecond)

	// The last snapshot stays readable while the client is idle.
	_, ok := store.Snapshot()["dev"]
	assert.True(t, ok)
}
