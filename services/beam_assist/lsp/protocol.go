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

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// JSONRPCVersion is the JSON-RPC version used by LSP.
const JSONRPCVersion = "2.0"

// =============================================================================
// JSON-RPC MESSAGE TYPES
// =============================================================================

// Message is an incoming JSON-RPC message. A nil ID marks a notification.
type Message struct {
	// JSONRPC is the protocol version, always "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID is the request identifier; absent for notifications. Kept raw
	// because clients may send numbers or strings.
	ID json.RawMessage `json:"id,omitempty"`

	// Method is the method to invoke.
	Method string `json:"method"`

	// Params contains the method parameters.
	Params json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the message expects no response.
func (m *Message) IsNotification() bool {
	return len(m.ID) == 0 || string(m.ID) == "null"
}

// Response is an outgoing JSON-RPC response.
type Response struct {
	// JSONRPC is the protocol version, always "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID mirrors the request identifier.
	ID json.RawMessage `json:"id"`

	// Result contains the method result (mutually exclusive with Error).
	Result any `json:"result,omitempty"`

	// Error contains error information (mutually exclusive with Result).
	Error *ResponseError `json:"error,omitempty"`
}

// ResponseError is a JSON-RPC error payload.
type ResponseError struct {
	// Code is the error code.
	Code int `json:"code"`

	// Message is a short description of the error.
	Message string `json:"message"`
}

// =============================================================================
// WIRE CODEC
// =============================================================================

// Codec frames JSON-RPC messages with Content-Length headers over a byte
// stream, stdin/stdout in production.
//
// Thread Safety:
//
//	Reads must come from a single goroutine. Writes are serialized
//	internally and may come from any goroutine.
type Codec struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
}

// NewCodec creates a codec over the given streams.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Read reads and parses the next message.
//
// Outputs:
//
//	*Message - The parsed message.
//	error - ErrClientGone at end of stream, a parse error otherwise.
func (c *Codec) Read() (*Message, error) {
	body, err := c.readBody()
	if err != nil {
		if err == io.EOF {
			return nil, ErrClientGone
		}
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &msg, nil
}

// readBody reads one Content-Length framed body.
func (c *Codec) readBody() ([]byte, error) {
	var contentLength int

	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)

		// Empty line marks end of headers
		if line == "" {
			break
		}

		if strings.HasPrefix(line, "Content-Length:") {
			lenStr := strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:"))
			contentLength, err = strconv.Atoi(lenStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length value %q: %w", lenStr, err)
			}
			if contentLength < 0 {
				return nil, fmt.Errorf("negative Content-Length: %d", contentLength)
			}
		}
		// Ignore other headers (Content-Type, etc.)
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing or zero Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Write marshals and frames one message.
func (c *Codec) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := c.writer.Write([]byte(header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := c.writer.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Respond writes a success response for the given request ID.
func (c *Codec) Respond(id json.RawMessage, result any) error {
	return c.Write(Response{JSONRPC: JSONRPCVersion, ID: id, Result: result})
}

// RespondError writes an error response for the given request ID.
func (c *Codec) RespondError(id json.RawMessage, code int, message string) error {
	return c.Write(Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &ResponseError{Code: code, Message: message},
	})
}
