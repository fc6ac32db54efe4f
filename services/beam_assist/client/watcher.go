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
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/config"
)

// ConfigWatcher reloads the configuration file on change and restarts the
// runtime client when the runtime section differs.
//
// # Description
//
// Watches the directory containing the configuration file, since editors
// typically replace the file rather than write it in place. Reload errors
// keep the previous configuration running.
//
// # Thread Safety
//
// Safe for concurrent use. Start should only be called once.
type ConfigWatcher struct {
	path    string
	client  *Client
	watcher *fsnotify.Watcher
	onLoad  func(config.Config)
}

// NewConfigWatcher creates a watcher for the configuration file.
//
// Inputs:
//
//	path - Configuration file path, already ~ expanded.
//	client - The runtime client to restart on changes.
//	onLoad - Optional callback invoked with each successfully loaded
//	         configuration, nil to skip.
func NewConfigWatcher(path string, client *Client, onLoad func(config.Config)) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ConfigWatcher{
		path:    path,
		client:  client,
		watcher: watcher,
		onLoad:  onLoad,
	}, nil
}

// Start begins watching. Blocks until the context is cancelled; run it in
// a goroutine.
func (w *ConfigWatcher) Start(ctx context.Context) {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		slog.Warn("failed to watch config directory",
			"dir", dir,
			"error", err)
		return
	}
	slog.Debug("watching configuration", "path", w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)

		case <-ctx.Done():
			slog.Debug("config watcher stopping")
			return
		}
	}
}

// handleEvent reloads on writes, creates, and renames of the config file.
func (w *ConfigWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	cfg, err := config.Load(w.path)
	if err != nil {
		slog.Warn("config reload failed, keeping previous settings",
			"path", w.path,
			"error", err)
		return
	}

	slog.Info("configuration reloaded", "path", w.path)
	if w.onLoad != nil {
		w.onLoad(cfg)
	}
	w.client.Start(ctx, cfg.Runtime)
}

// Stop stops the watcher. Safe to call multiple times.
func (w *ConfigWatcher) Stop() error {
	return w.watcher.Close()
}
