// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/callsite"
)

// ParameterInfo is one declared parameter of a Python callable.
type ParameterInfo struct {
	// Name of the parameter.
	Name string

	// Annotation is the type annotation text, empty when absent.
	Annotation string

	// Default is the default value text, empty when absent.
	Default string

	// Variadic marks a *args parameter.
	Variadic bool

	// KeywordVariadic marks a **kwargs parameter.
	KeywordVariadic bool
}

// Label renders the parameter the way it appears in a signature line.
func (p ParameterInfo) Label() string {
	var b strings.Builder
	if p.Variadic {
		b.WriteByte('*')
	}
	if p.KeywordVariadic {
		b.WriteString("**")
	}
	b.WriteString(p.Name)
	if p.Annotation != "" {
		b.WriteString(": ")
		b.WriteString(p.Annotation)
	}
	if p.Default != "" {
		b.WriteByte('=')
		b.WriteString(p.Default)
	}
	return b.String()
}

// ParsedSignature is a structured Python signature.
type ParsedSignature struct {
	// Name of the callable, empty for bare "(...)" signatures.
	Name string

	// Parameters in declaration order.
	Parameters []ParameterInfo

	// ReturnType is the return annotation text, empty when absent.
	ReturnType string
}

// Label renders the full "name(a, b=1, *args) -> ret" signature line.
func (s *ParsedSignature) Label() string {
	parts := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		parts[i] = p.Label()
	}
	label := fmt.Sprintf("%s(%s)", s.Name, strings.Join(parts, ", "))
	if s.ReturnType != "" {
		label += " -> " + s.ReturnType
	}
	return label
}

// DropReceiver removes a leading self/cls parameter in place. The runtime
// reports method signatures with the receiver included, but callers never
// pass it, so rendered help must not show it either.
func (s *ParsedSignature) DropReceiver() {
	if len(s.Parameters) > 0 && isReceiver(s.Parameters[0]) {
		s.Parameters = s.Parameters[1:]
	}
}

// Receivers reports how many leading receiver parameters the signature
// carries (0 or 1). Callers that render the receiver need this to shift
// argument indexes back onto the rendered list.
func (s *ParsedSignature) Receivers() int {
	if len(s.Parameters) > 0 && isReceiver(s.Parameters[0]) {
		return 1
	}
	return 0
}

func isReceiver(p ParameterInfo) bool {
	return !p.Variadic && !p.KeywordVariadic && (p.Name == "self" || p.Name == "cls")
}

// CallParams maps the signature onto the locator's parameter model,
// dropping a leading self/cls receiver the runtime includes on unbound
// methods. **kwargs is kept as a plain named slot so keyword arguments
// typed against it still resolve.
func (s *ParsedSignature) CallParams() []callsite.Param {
	params := make([]callsite.Param, 0, len(s.Parameters))
	for i, p := range s.Parameters {
		if i == 0 && isReceiver(p) {
			continue
		}
		params = append(params, callsite.Param{Name: p.Name, Variadic: p.Variadic})
	}
	return params
}

// ParseSignature parses a declared Python signature string.
//
// Description:
//
//	Accepts both full definitions ("def mv(*args, relative=False)") and
//	the bare parenthesized form the runtime reports ("(*args,
//	relative=False)"). The string is wrapped into a minimal module and
//	parsed with tree-sitter rather than regexes, matching how the rest
//	of the engine treats Python text.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	sig - The signature string.
//
// Outputs:
//
//	*ParsedSignature - Structured signature, never nil on success.
//	error - ErrInvalidSignature for empty or unshapeable input.
func (e *Engine) ParseSignature(ctx context.Context, sig string) (*ParsedSignature, error) {
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return nil, ErrInvalidSignature
	}

	code := sig
	if !strings.HasPrefix(code, "def ") {
		if !strings.HasPrefix(code, "(") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSignature, sig)
		}
		code = "def __sig__" + code
	}
	code += ":\n    pass"

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(code))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	defer tree.Close()

	result := &ParsedSignature{Parameters: make([]ParameterInfo, 0, 4)}
	extractDefinition(tree.RootNode(), []byte(code), result)
	if result.Name == "__sig__" {
		result.Name = ""
	}
	return result, nil
}

// extractDefinition walks the tree down to the function_definition node and
// fills the result.
func extractDefinition(node *sitter.Node, code []byte, result *ParsedSignature) {
	if node.Type() == "function_definition" {
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			result.Name = string(code[nameNode.StartByte():nameNode.EndByte()])
		}
		if params := node.ChildByFieldName("parameters"); params != nil {
			result.Parameters = extractParameters(params, code)
		}
		if retNode := node.ChildByFieldName("return_type"); retNode != nil {
			result.ReturnType = string(code[retNode.StartByte():retNode.EndByte()])
		}
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		extractDefinition(node.Child(i), code, result)
	}
}

// extractParameters converts a tree-sitter parameters node.
func extractParameters(node *sitter.Node, code []byte) []ParameterInfo {
	params := make([]ParameterInfo, 0, int(node.ChildCount()))

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			params = append(params, ParameterInfo{
				Name: string(code[child.StartByte():child.EndByte()]),
			})

		case "typed_parameter":
			p := ParameterInfo{}
			// typed_parameter has no name field; the identifier is the
			// first child.
			for j := 0; j < int(child.ChildCount()); j++ {
				sub := child.Child(j)
				if sub.Type() == "identifier" && p.Name == "" {
					p.Name = string(code[sub.StartByte():sub.EndByte()])
				}
			}
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				p.Annotation = string(code[typeNode.StartByte():typeNode.EndByte()])
			}
			params = append(params, p)

		case "default_parameter":
			p := ParameterInfo{}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				p.Name = string(code[nameNode.StartByte():nameNode.EndByte()])
			}
			if valueNode := child.ChildByFieldName("value"); valueNode != nil {
				p.Default = string(code[valueNode.StartByte():valueNode.EndByte()])
			}
			params = append(params, p)

		case "typed_default_parameter":
			p := ParameterInfo{}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				p.Name = string(code[nameNode.StartByte():nameNode.EndByte()])
			}
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				p.Annotation = string(code[typeNode.StartByte():typeNode.EndByte()])
			}
			if valueNode := child.ChildByFieldName("value"); valueNode != nil {
				p.Default = string(code[valueNode.StartByte():valueNode.EndByte()])
			}
			params = append(params, p)

		case "list_splat_pattern":
			if name := splatName(child, code); name != "" {
				params = append(params, ParameterInfo{Name: name, Variadic: true})
			}

		case "dictionary_splat_pattern":
			if name := splatName(child, code); name != "" {
				params = append(params, ParameterInfo{Name: name, KeywordVariadic: true})
			}
		}
	}
	return params
}

// splatName extracts the identifier inside a *args / **kwargs pattern.
func splatName(node *sitter.Node, code []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" {
			return string(code[child.StartByte():child.EndByte()])
		}
	}
	return ""
}
