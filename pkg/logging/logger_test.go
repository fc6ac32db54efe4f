// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
		{Level(-1), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tt.level.toSlogLevel()
			if got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"loud", LevelInfo}, // Unknown falls back to Info
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelDebug,
		LogDir:  dir,
		Service: "test",
		Quiet:   true,
	})

	logger.Info("snapshot replaced", "version", 3)
	logger.Debug("message dropped", "reason", "heartbeat")

	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one log file, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "test_") {
		t.Errorf("unexpected log file name %q", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "snapshot replaced") {
		t.Errorf("info entry missing from file: %s", content)
	}
	if !strings.Contains(content, `"service":"test"`) {
		t.Errorf("service attribute missing: %s", content)
	}
}

func TestNew_LevelFilter(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "test",
		Quiet:   true,
	})

	logger.Info("should be filtered")
	logger.Warn("should appear")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected one log file, got %d", len(entries))
	}
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if strings.Contains(string(data), "should be filtered") {
		t.Error("info entry leaked past warn filter")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("warn entry missing")
	}
}

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "test",
		Quiet:   true,
	})

	child := logger.With("conn_id", "abc-123")
	child.Info("connected")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if !strings.Contains(string(data), "abc-123") {
		t.Error("child attribute missing from log")
	}
}

func TestLogger_CloseTwice(t *testing.T) {
	logger := New(Config{LogDir: t.TempDir(), Quiet: true})
	if err := logger.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger.Slog() == nil {
		t.Fatal("default logger has no slog")
	}
	// No file configured, Close is a no-op.
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

// =============================================================================
// Multi-Handler Tests
// =============================================================================

func TestMultiHandler_Enabled(t *testing.T) {
	debug := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	errOnly := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})

	h := &multiHandler{handlers: []slog.Handler{errOnly, debug}}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("multiHandler should be enabled when any handler is")
	}

	h = &multiHandler{handlers: []slog.Handler{errOnly}}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("multiHandler enabled below every handler's level")
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got := expandPath("~/.beambuddy/logs")
	want := filepath.Join(home, ".beambuddy/logs")
	if got != want {
		t.Errorf("expandPath() = %q, want %q", got, want)
	}

	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("absolute path changed: %q", got)
	}
}
