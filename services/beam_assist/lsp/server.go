// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lsp implements the Language Server Protocol front end.
//
// The server speaks JSON-RPC over a byte stream (stdin/stdout when launched
// by an editor), keeps the open-document set under full sync, and delegates
// completion and signature help to the runtime-backed providers.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/completions"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/protocol"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/signatures"
)

// ServerName identifies this server in the initialize handshake.
const ServerName = "beambuddy"

// Server is the LSP front end.
//
// Description:
//
//	One Server handles one editor connection. Run reads messages until
//	the client disconnects or sends exit. Requests arriving before
//	initialize or after shutdown are rejected per the protocol.
//
// Thread Safety:
//
//	Run must be called once, from one goroutine.
type Server struct {
	codec       *Codec
	docs        *DocumentStore
	completions *completions.Provider
	signatures  *signatures.Provider
	version     string

	initialized bool
	shutdown    bool
}

// NewServer creates a server over the given streams.
func NewServer(r io.Reader, w io.Writer, comp *completions.Provider, sig *signatures.Provider, version string) *Server {
	return &Server{
		codec:       NewCodec(r, w),
		docs:        NewDocumentStore(),
		completions: comp,
		signatures:  sig,
		version:     version,
	}
}

// Run processes messages until the connection ends.
//
// Outputs:
//
//	error - nil on protocol-driven exit or client disconnect after
//	        shutdown; the underlying failure otherwise.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := s.codec.Read()
		if err != nil {
			if errors.Is(err, ErrClientGone) {
				if s.shutdown {
					return nil
				}
				return ErrClientGone
			}
			slog.Warn("dropping unreadable message", "error", err)
			continue
		}

		if err := s.dispatch(ctx, msg); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return err
		}
	}
}

// dispatch routes one message to its handler.
func (s *Server) dispatch(ctx context.Context, msg *Message) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		s.shutdown = true
		return s.codec.Respond(msg.ID, json.RawMessage("null"))
	case "exit":
		return ErrExit
	}

	if !s.initialized {
		if msg.IsNotification() {
			return nil
		}
		return s.codec.RespondError(msg.ID, codeInvalidRequest, "server not initialized")
	}
	if s.shutdown {
		if msg.IsNotification() {
			return nil
		}
		return s.codec.RespondError(msg.ID, codeInvalidRequest, "server is shutting down")
	}

	switch msg.Method {
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/completion":
		return s.handleCompletion(ctx, msg)
	case "textDocument/signatureHelp":
		return s.handleSignatureHelp(ctx, msg)
	default:
		if msg.IsNotification() {
			slog.Debug("ignoring notification", "method", msg.Method)
			return nil
		}
		return s.codec.RespondError(msg.ID, codeMethodNotFound,
			fmt.Sprintf("method not supported: %s", msg.Method))
	}
}

func (s *Server) handleInitialize(msg *Message) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.codec.RespondError(msg.ID, codeInvalidParams, err.Error())
	}

	s.initialized = true
	if params.ClientInfo != nil {
		slog.Info("client connected",
			"client", params.ClientInfo.Name,
			"client_version", params.ClientInfo.Version)
	}

	return s.codec.Respond(msg.ID, protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.SyncFull,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
			},
			SignatureHelp: &protocol.SignatureHelpOptions{
				TriggerCharacters:   []string{"(", ","},
				RetriggerCharacters: []string{","},
			},
		},
		ServerInfo: protocol.ServerInfo{
			Name:    ServerName,
			Version: s.version,
		},
	})
}

func (s *Server) handleDidOpen(msg *Message) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		slog.Warn("malformed didOpen", "error", err)
		return nil
	}
	s.docs.Open(params.TextDocument)
	return nil
}

func (s *Server) handleDidChange(msg *Message) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		slog.Warn("malformed didChange", "error", err)
		return nil
	}
	if err := s.docs.Apply(params); err != nil {
		slog.Warn("didChange dropped", "error", err)
	}
	return nil
}

func (s *Server) handleDidClose(msg *Message) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		slog.Warn("malformed didClose", "error", err)
		return nil
	}
	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) handleCompletion(ctx context.Context, msg *Message) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.codec.RespondError(msg.ID, codeInvalidParams, err.Error())
	}

	doc, err := s.docs.Get(params.TextDocument.URI)
	if err != nil {
		return s.codec.RespondError(msg.ID, codeInvalidParams, err.Error())
	}

	list := s.completions.Complete(ctx, completions.Request{
		Content: doc.Text,
		Offset:  doc.Offset(params.Position),
	})
	return s.codec.Respond(msg.ID, list)
}

func (s *Server) handleSignatureHelp(ctx context.Context, msg *Message) error {
	var params protocol.SignatureHelpParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.codec.RespondError(msg.ID, codeInvalidParams, err.Error())
	}

	doc, err := s.docs.Get(params.TextDocument.URI)
	if err != nil {
		return s.codec.RespondError(msg.ID, codeInvalidParams, err.Error())
	}

	help := s.signatures.Help(ctx, signatures.Request{
		Content: doc.Text,
		Offset:  doc.Offset(params.Position),
	})
	if help == nil {
		return s.codec.Respond(msg.ID, json.RawMessage("null"))
	}
	return s.codec.Respond(msg.ID, help)
}
