// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lsp

import "errors"

var (
	// ErrClientGone indicates the client closed the input stream.
	ErrClientGone = errors.New("client closed the connection")

	// ErrExit signals a clean protocol-driven exit.
	ErrExit = errors.New("exit requested")

	// ErrUnknownDocument indicates a request named a URI that was never
	// opened or was already closed.
	ErrUnknownDocument = errors.New("unknown document")
)

// JSON-RPC error codes the server emits.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)
