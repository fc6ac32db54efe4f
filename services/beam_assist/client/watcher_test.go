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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/config"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
)

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))

	loaded := make(chan config.Config, 4)
	c := NewClient(namespace.NewStore())
	defer c.Stop()

	w, err := NewConfigWatcher(path, c, func(cfg config.Config) {
		loaded <- cfg
	})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	select {
	case cfg := <-loaded:
		require.Equal(t, "debug", cfg.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration reload never observed")
	}
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))

	loaded := make(chan config.Config, 4)
	c := NewClient(namespace.NewStore())
	defer c.Stop()

	w, err := NewConfigWatcher(path, c, func(cfg config.Config) {
		loaded <- cfg
	})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600))

	select {
	case <-loaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestConfigWatcher_KeepsRunningOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))

	loaded := make(chan config.Config, 4)
	c := NewClient(namespace.NewStore())
	defer c.Stop()

	w, err := NewConfigWatcher(path, c, func(cfg config.Config) {
		loaded <- cfg
	})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	// A broken file must not kill the watcher.
	require.NoError(t, os.WriteFile(path, []byte("logging: [broken"), 0o600))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-loaded:
			if cfg.Logging.Level == "warn" {
				return
			}
		case <-deadline:
			t.Fatal("watcher stopped reloading after a bad file")
		}
	}
}
