// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine is the static-analysis side of BeamBuddy: tree-sitter
// backed inspection of Python documents to find the call or dotted prefix
// the cursor sits in.
//
// The engine is deliberately request-scoped. Every call re-parses the
// document it is given; there is no incremental state and no cross-request
// cache. Tree-sitter is error tolerant, so half-typed calls still produce a
// usable tree most of the time, and a purely textual fallback covers the
// rest.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/callsite"
)

// DefaultMaxDocumentSize is the largest document the engine will analyze.
const DefaultMaxDocumentSize = 10 * 1024 * 1024 // 10MB

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDocumentSize sets the maximum document size the engine accepts.
func WithMaxDocumentSize(bytes int64) Option {
	return func(e *Engine) {
		if bytes > 0 {
			e.maxDocSize = bytes
		}
	}
}

// Engine analyzes Python documents for call sites and completion prefixes.
//
// Thread Safety:
//
//	Engine is safe for concurrent use. Each analysis creates its own
//	tree-sitter parser instance internally.
type Engine struct {
	maxDocSize int64
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{maxDocSize: DefaultMaxDocumentSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CallContext describes the innermost open call enclosing a cursor.
type CallContext struct {
	// Callee is the dotted path of the called expression, e.g.
	// "scans.line_scan". Empty when the callee is not a plain dotted name.
	Callee string

	// OpenParen is the byte offset of the call's open parenthesis.
	OpenParen int

	// Span is the argument text between the open parenthesis and the
	// cursor, ready for callsite.LocateInSpan.
	Span string
}

// CallContext finds the open call enclosing offset.
//
// Description:
//
//	Parses the document and walks up from the node at the cursor looking
//	for a call whose argument list contains the offset. Documents that are
//	too broken for tree-sitter to shape into a call fall back to a textual
//	scan of the call prefix.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	content - Raw document bytes. Must be valid UTF-8.
//	offset - Byte offset of the cursor.
//
// Outputs:
//
//	*CallContext - The enclosing call, never nil on success.
//	error - ErrNoCallSite when the cursor is not inside an open call;
//	        ErrDocumentTooLarge / ErrInvalidContent for rejected input.
func (e *Engine) CallContext(ctx context.Context, content []byte, offset int) (*CallContext, error) {
	start := time.Now()

	if err := e.validate(content); err != nil {
		return nil, err
	}
	if offset < 0 || offset > len(content) {
		offset = clamp(offset, 0, len(content))
	}

	ctx, span := startAnalyzeSpan(ctx, "Engine.CallContext", len(content))
	defer span.End()

	cc, err := e.treeCallContext(ctx, content, offset)
	if err == nil {
		recordAnalyzeMetrics(ctx, "call_context", time.Since(start), true)
		return cc, nil
	}

	// Textual fallback for documents tree-sitter could not shape into an
	// enclosing call (half-typed lines, stray brackets).
	text := string(content)
	argSpan, open, ok := callsite.OpenCallSpan(text, offset)
	if !ok {
		recordAnalyzeMetrics(ctx, "call_context", time.Since(start), false)
		return nil, ErrNoCallSite
	}
	cc = &CallContext{
		Callee:    calleeBefore(text, open),
		OpenParen: open,
		Span:      argSpan,
	}
	recordAnalyzeMetrics(ctx, "call_context", time.Since(start), true)
	return cc, nil
}

// treeCallContext resolves the enclosing call via the syntax tree.
func (e *Engine) treeCallContext(ctx context.Context, content []byte, offset int) (*CallContext, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	defer tree.Close()

	node := smallestNodeAt(tree.RootNode(), uint32(offset))
	for node != nil {
		if node.Type() == "call" {
			if cc := e.callFromNode(node, content, offset); cc != nil {
				return cc, nil
			}
		}
		node = node.Parent()
	}
	return nil, ErrNoCallSite
}

// callFromNode builds a CallContext when offset sits inside the node's
// argument list. Returns nil when the cursor is outside the arguments
// (on the callee itself, or past a closing paren).
func (e *Engine) callFromNode(node *sitter.Node, content []byte, offset int) *CallContext {
	args := node.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	open := int(args.StartByte())
	if offset <= open {
		return nil
	}
	// A complete argument_list ends with ); the cursor must sit before it
	// for the call to still be open at the cursor.
	end := int(args.EndByte())
	closed := end <= len(content) && end > 0 && content[end-1] == ')'
	if closed && offset >= end {
		return nil
	}

	callee := ""
	if fn := node.ChildByFieldName("function"); fn != nil {
		callee = string(content[fn.StartByte():fn.EndByte()])
		if !isDottedName(callee) {
			callee = ""
		}
	}
	return &CallContext{
		Callee:    callee,
		OpenParen: open,
		Span:      string(content[open+1 : offset]),
	}
}

// DottedPrefix extracts the dotted name ending at offset, split into the
// resolved base path and the partial component being typed.
//
// Examples:
//
//	"dev.sa|"   -> base "dev", partial "sa"
//	"dev.|"     -> base "dev", partial ""
//	"sca|"      -> base "",    partial "sca"
//	"f(dev.|"   -> base "dev", partial ""
//
// A chain hanging off a call or subscript result has no resolvable prefix
// at all, since the engine never evaluates expressions: "f().|" and
// "x[0].|" report ok=false, which is distinct from an empty prefix at the
// start of a name.
func (e *Engine) DottedPrefix(content []byte, offset int) (base, partial string, ok bool) {
	if offset > len(content) {
		offset = len(content)
	}
	start := offset
	for start > 0 && (isNameByte(content[start-1]) || content[start-1] == '.') {
		start--
	}
	full := string(content[start:offset])

	// The chain continues a call or subscript result only when it opens
	// with a dot; "f(dev" is a fresh name, "f().dev" is not.
	if strings.HasPrefix(full, ".") && start > 0 &&
		(content[start-1] == ')' || content[start-1] == ']') {
		return "", "", false
	}

	if idx := strings.LastIndexByte(full, '.'); idx >= 0 {
		return strings.Trim(full[:idx], "."), full[idx+1:], true
	}
	return "", full, true
}

// validate applies the engine's document limits.
func (e *Engine) validate(content []byte) error {
	if int64(len(content)) > e.maxDocSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrDocumentTooLarge, len(content), e.maxDocSize)
	}
	if !utf8.Valid(content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}
	return nil
}

// smallestNodeAt descends to the deepest node whose byte range contains
// offset. Descends through both named and anonymous children so that
// cursors inside punctuation still land somewhere useful.
func smallestNodeAt(root *sitter.Node, offset uint32) *sitter.Node {
	node := root
	for {
		var next *sitter.Node
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.StartByte() <= offset && offset <= child.EndByte() {
				next = child
				break
			}
		}
		if next == nil {
			return node
		}
		node = next
	}
}

// calleeBefore extracts the dotted name immediately before the open paren.
func calleeBefore(text string, open int) string {
	end := open
	for end > 0 && (text[end-1] == ' ' || text[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && (isNameByte(text[start-1]) || text[start-1] == '.') {
		start--
	}
	name := strings.Trim(text[start:end], ".")
	if !isDottedName(name) {
		return ""
	}
	return name
}

// isDottedName reports whether s is a chain of identifiers joined by dots.
func isDottedName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			switch {
			case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127:
			case r >= '0' && r <= '9':
				if i == 0 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

// isNameByte reports whether b can appear in a Python identifier. Multibyte
// runes are accepted wholesale; precision does not matter for prefix cuts.
func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b >= 128
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
