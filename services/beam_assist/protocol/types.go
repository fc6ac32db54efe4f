// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package protocol holds the Language Server Protocol payload types shared
// between the stdio server and the completion and signature providers.
// Only the subset of the protocol the server actually speaks is modeled.
package protocol

import "encoding/json"

// =============================================================================
// POSITIONS AND DOCUMENTS
// =============================================================================

// Position is a zero-based line/character location. Character offsets count
// UTF-16 code units, per the protocol's default position encoding.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextDocumentIdentifier names an open document by URI.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier adds the client's version counter.
type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

// TextDocumentItem is the full document payload sent on didOpen.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// TextDocumentContentChangeEvent carries one change from didChange. When
// Range is nil the Text field replaces the whole document.
type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// DidOpenTextDocumentParams is the textDocument/didOpen payload.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// DidChangeTextDocumentParams is the textDocument/didChange payload.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidCloseTextDocumentParams is the textDocument/didClose payload.
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// TextDocumentPositionParams is the common request shape for requests that
// name a document position.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// =============================================================================
// COMPLETION
// =============================================================================

// CompletionItemKind is the protocol's numeric item kind.
type CompletionItemKind int

// The kinds the providers emit. Values are fixed by the protocol.
const (
	KindMethod   CompletionItemKind = 2
	KindFunction CompletionItemKind = 3
	KindField    CompletionItemKind = 5
	KindVariable CompletionItemKind = 6
	KindClass    CompletionItemKind = 7
	KindModule   CompletionItemKind = 9
	KindProperty CompletionItemKind = 10
)

// CompletionItem is a single completion suggestion.
type CompletionItem struct {
	Label         string             `json:"label"`
	Kind          CompletionItemKind `json:"kind,omitempty"`
	Detail        string             `json:"detail,omitempty"`
	Documentation string             `json:"documentation,omitempty"`
	SortText      string             `json:"sortText,omitempty"`
	FilterText    string             `json:"filterText,omitempty"`
	InsertText    string             `json:"insertText,omitempty"`
}

// CompletionList wraps completion items. IsIncomplete signals that typing
// further characters should re-query the server.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// CompletionParams is the textDocument/completion payload.
type CompletionParams struct {
	TextDocumentPositionParams
}

// =============================================================================
// SIGNATURE HELP
// =============================================================================

// ParameterInformation describes one parameter inside a signature label.
type ParameterInformation struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation,omitempty"`
}

// SignatureInformation is a single callable's rendered signature.
type SignatureInformation struct {
	Label         string                 `json:"label"`
	Documentation string                 `json:"documentation,omitempty"`
	Parameters    []ParameterInformation `json:"parameters,omitempty"`
}

// SignatureHelp is the textDocument/signatureHelp response payload.
type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature int                    `json:"activeSignature"`
	ActiveParameter int                    `json:"activeParameter"`
}

// SignatureHelpParams is the textDocument/signatureHelp payload.
type SignatureHelpParams struct {
	TextDocumentPositionParams
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// InitializeParams is the subset of the initialize payload the server reads.
type InitializeParams struct {
	ProcessID  *int            `json:"processId"`
	RootURI    string          `json:"rootUri,omitempty"`
	ClientInfo *ClientInfo     `json:"clientInfo,omitempty"`
	Options    json.RawMessage `json:"initializationOptions,omitempty"`
}

// ClientInfo identifies the connecting editor.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult advertises the server's capabilities.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

// ServerInfo identifies this server to the client.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// TextDocumentSyncKind selects how document changes are transmitted.
type TextDocumentSyncKind int

// Sync kinds. The server requests full-document sync.
const (
	SyncNone        TextDocumentSyncKind = 0
	SyncFull        TextDocumentSyncKind = 1
	SyncIncremental TextDocumentSyncKind = 2
)

// CompletionOptions configures completion triggering.
type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// SignatureHelpOptions configures signature help triggering.
type SignatureHelpOptions struct {
	TriggerCharacters   []string `json:"triggerCharacters,omitempty"`
	RetriggerCharacters []string `json:"retriggerCharacters,omitempty"`
}

// ServerCapabilities lists what this server implements.
type ServerCapabilities struct {
	TextDocumentSync   TextDocumentSyncKind  `json:"textDocumentSync"`
	CompletionProvider *CompletionOptions    `json:"completionProvider,omitempty"`
	SignatureHelp      *SignatureHelpOptions `json:"signatureHelpProvider,omitempty"`
}
