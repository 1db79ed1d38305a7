// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package yamlcore

import "fmt"

// TokenType identifies a lexical token produced by the Scanner.
type TokenType int

const (
	TokenStreamStart TokenType = iota
	TokenStreamEnd
	TokenDocumentStart
	TokenDocumentEnd
	TokenVersionDirective
	TokenTagDirective
	TokenBlockSequenceStart
	TokenBlockMappingStart
	TokenBlockEnd
	TokenFlowSequenceStart
	TokenFlowSequenceEnd
	TokenFlowMappingStart
	TokenFlowMappingEnd
	TokenBlockEntry
	TokenFlowEntry
	TokenKey
	TokenValue
	TokenScalar
	TokenAnchor
	TokenAlias
	TokenTag
	TokenComment
)

var tokenTypeNames = map[TokenType]string{
	TokenStreamStart:        "STREAM-START",
	TokenStreamEnd:          "STREAM-END",
	TokenDocumentStart:      "DOCUMENT-START",
	TokenDocumentEnd:        "DOCUMENT-END",
	TokenVersionDirective:   "VERSION-DIRECTIVE",
	TokenTagDirective:       "TAG-DIRECTIVE",
	TokenBlockSequenceStart: "BLOCK-SEQUENCE-START",
	TokenBlockMappingStart:  "BLOCK-MAPPING-START",
	TokenBlockEnd:           "BLOCK-END",
	TokenFlowSequenceStart:  "FLOW-SEQUENCE-START",
	TokenFlowSequenceEnd:    "FLOW-SEQUENCE-END",
	TokenFlowMappingStart:   "FLOW-MAPPING-START",
	TokenFlowMappingEnd:     "FLOW-MAPPING-END",
	TokenBlockEntry:         "BLOCK-ENTRY",
	TokenFlowEntry:          "FLOW-ENTRY",
	TokenKey:                "KEY",
	TokenValue:              "VALUE",
	TokenScalar:             "SCALAR",
	TokenAnchor:             "ANCHOR",
	TokenAlias:              "ALIAS",
	TokenTag:                "TAG",
	TokenComment:            "COMMENT",
}

func (t TokenType) String() string {
	if s, ok := tokenTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

// ScalarStyle records how a scalar was written in the source.
type ScalarStyle int

const (
	StylePlain ScalarStyle = iota
	StyleSingleQuoted
	StyleDoubleQuoted
	StyleLiteral
	StyleFolded
)

func (s ScalarStyle) String() string {
	switch s {
	case StylePlain:
		return "Plain"
	case StyleSingleQuoted:
		return "SingleQuoted"
	case StyleDoubleQuoted:
		return "DoubleQuoted"
	case StyleLiteral:
		return "Literal"
	case StyleFolded:
		return "Folded"
	}
	return "Unknown"
}

// Token is one lexical unit with its source span.
//
// The payload fields are used per type: Value holds scalar text, raw tag
// text, anchor or alias names and comment text; Style qualifies Scalar
// tokens; Handle and Prefix qualify TagDirective tokens; Major and Minor
// qualify VersionDirective tokens.
type Token struct {
	Type   TokenType
	Value  string
	Style  ScalarStyle
	Handle string
	Prefix string
	Major  int
	Minor  int

	Start Position
	End   Position
}

func (t *Token) String() string {
	switch t.Type {
	case TokenScalar:
		return fmt.Sprintf("SCALAR(%s, %s)", t.Value, t.Style)
	case TokenAnchor:
		return fmt.Sprintf("ANCHOR(%s)", t.Value)
	case TokenAlias:
		return fmt.Sprintf("ALIAS(%s)", t.Value)
	case TokenTag:
		return fmt.Sprintf("TAG(%s)", t.Value)
	case TokenTagDirective:
		return fmt.Sprintf("TAG-DIRECTIVE(%s, %s)", t.Handle, t.Prefix)
	case TokenVersionDirective:
		return fmt.Sprintf("VERSION-DIRECTIVE(%d.%d)", t.Major, t.Minor)
	case TokenComment:
		return fmt.Sprintf("COMMENT(%s)", t.Value)
	}
	return t.Type.String()
}
