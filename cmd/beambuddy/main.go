// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command beambuddy starts the BeamBuddy language server.
//
// The server speaks LSP over stdin/stdout, which is how editors launch it:
//
//	beambuddy -config ~/.config/beambuddy/config.yaml
//
// An optional HTTP inspection surface can be enabled for debugging the
// live namespace without an editor attached:
//
//	beambuddy -http :8080
//
//	# Namespace summary
//	curl http://localhost:8080/v1/beambuddy/namespace
//
//	# Resolve a dotted path
//	curl 'http://localhost:8080/v1/beambuddy/namespace/resolve?path=dev.samx'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/BeamBuddy/pkg/logging"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/client"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/completions"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/config"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/engine"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/lsp"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/signatures"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Configuration file path")
	httpAddr := flag.String("http", "", "Inspection HTTP listen address (disabled when empty)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := run(*configPath, *httpAddr, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "beambuddy: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, httpAddr string, debug bool) error {
	cfg, cfgErr := config.Load(configPath)

	level := logging.ParseLevel(cfg.Logging.Level)
	if debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "beambuddy",
	})
	defer logger.Close()
	// Route package-level slog through the shared destinations. Stdout
	// stays clean for the protocol stream.
	slog.SetDefault(logger.Slog())

	if cfgErr != nil {
		logger.Warn("configuration invalid, running on defaults", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := namespace.NewStore()
	eng := engine.New()
	comp := completions.NewProvider(store, eng, cfg.Completions)
	sig := signatures.NewProvider(store, eng)

	runtimeClient := client.NewClient(store)
	runtimeClient.Start(ctx, cfg.Runtime)
	defer runtimeClient.Stop()

	group, ctx := errgroup.WithContext(ctx)

	// Config watcher: restarts the runtime client and swaps completion
	// settings when the file changes.
	watcher, err := client.NewConfigWatcher(config.ExpandPath(configPath), runtimeClient, func(next config.Config) {
		comp.UpdateSettings(next.Completions)
	})
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		defer watcher.Stop()
		group.Go(func() error {
			watcher.Start(ctx)
			return nil
		})
	}

	// LSP over stdin/stdout is the primary surface.
	server := lsp.NewServer(os.Stdin, os.Stdout, comp, sig, beam_assist.ServiceVersion)
	group.Go(func() error {
		defer stop() // editor went away, bring everything down
		return server.Run(ctx)
	})

	// Optional HTTP inspection surface.
	if httpAddr != "" {
		if debug {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.New()
		router.Use(gin.Recovery())

		svc := beam_assist.NewService(store, comp, sig)
		beam_assist.RegisterRoutes(router.Group("/v1"), beam_assist.NewHandlers(svc))

		httpServer := &http.Server{Addr: httpAddr, Handler: router}
		group.Go(func() error {
			logger.Info("inspection server listening", "addr", httpAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			return httpServer.Shutdown(context.Background())
		})
	}

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("beambuddy stopped")
	return nil
}
