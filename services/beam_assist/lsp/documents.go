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
	"fmt"
	"sync"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/callsite"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/protocol"
)

// Document is one open text document.
type Document struct {
	URI     string
	Version int
	Text    string
}

// Offset converts an LSP position into a byte offset into the document.
func (d *Document) Offset(pos protocol.Position) int {
	return callsite.ByteOffset(d.Text, callsite.Position{
		Line:      pos.Line,
		Character: pos.Character,
	})
}

// DocumentStore tracks the open documents under full-document sync.
//
// Thread Safety:
//
//	Safe for concurrent use.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open registers a document.
func (s *DocumentStore) Open(item protocol.TextDocumentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[item.URI] = &Document{
		URI:     item.URI,
		Version: item.Version,
		Text:    item.Text,
	}
}

// Apply replaces a document's content from a didChange notification.
//
// Description:
//
//	The server advertises full sync, so the last change event's text is
//	the whole document. Stale versions are ignored so an out-of-order
//	notification cannot roll the buffer back.
func (s *DocumentStore) Apply(params protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, params.TextDocument.URI)
	}
	if params.TextDocument.Version < doc.Version {
		return nil
	}

	doc.Version = params.TextDocument.Version
	doc.Text = params.ContentChanges[len(params.ContentChanges)-1].Text
	return nil
}

// Close forgets a document. Closing an unknown URI is a no-op.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Get returns the current snapshot of a document.
func (s *DocumentStore) Get(uri string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	copied := *doc
	return &copied, nil
}

// Len returns how many documents are open.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
