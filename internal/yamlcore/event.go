// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package yamlcore

import (
	"fmt"
	"strings"
)

// EventType identifies a structural event produced by the Parser.
type EventType int

const (
	EventStreamStart EventType = iota
	EventStreamEnd
	EventDocumentStart
	EventDocumentEnd
	EventAlias
	EventScalar
	EventSequenceStart
	EventSequenceEnd
	EventMappingStart
	EventMappingEnd
)

func (t EventType) String() string {
	switch t {
	case EventStreamStart:
		return "STREAM-START"
	case EventStreamEnd:
		return "STREAM-END"
	case EventDocumentStart:
		return "DOCUMENT-START"
	case EventDocumentEnd:
		return "DOCUMENT-END"
	case EventAlias:
		return "ALIAS"
	case EventScalar:
		return "SCALAR"
	case EventSequenceStart:
		return "SEQUENCE-START"
	case EventSequenceEnd:
		return "SEQUENCE-END"
	case EventMappingStart:
		return "MAPPING-START"
	case EventMappingEnd:
		return "MAPPING-END"
	}
	return fmt.Sprintf("EVENT(%d)", int(t))
}

// VersionDirective is a %YAML directive captured on a document start.
type VersionDirective struct {
	Major int
	Minor int
}

// TagDirective is a %TAG directive captured on a document start.
type TagDirective struct {
	Handle string
	Prefix string
}

// Event is one structural unit of a document. The payload fields are used
// per type: Anchor on Alias, Scalar and collection starts; Tag, Value and
// Style on Scalar; Tag and Flow on collection starts; Version,
// TagDirectives and Implicit on DocumentStart; Implicit on DocumentEnd.
type Event struct {
	Type   EventType
	Anchor string
	Tag    string
	Value  string
	Style  ScalarStyle

	Flow     bool
	Implicit bool

	Version       *VersionDirective
	TagDirectives []TagDirective

	Pos Position
}

func (e *Event) String() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	var attrs []string
	if e.Anchor != "" {
		attrs = append(attrs, "anchor="+e.Anchor)
	}
	if e.Tag != "" {
		attrs = append(attrs, "tag="+e.Tag)
	}
	switch e.Type {
	case EventScalar:
		attrs = append(attrs, fmt.Sprintf("%q", e.Value), e.Style.String())
	case EventSequenceStart, EventMappingStart:
		if e.Flow {
			attrs = append(attrs, "flow")
		} else {
			attrs = append(attrs, "block")
		}
	case EventDocumentStart, EventDocumentEnd:
		if e.Implicit {
			attrs = append(attrs, "implicit")
		}
	}
	if len(attrs) > 0 {
		b.WriteByte('(')
		b.WriteString(strings.Join(attrs, ", "))
		b.WriteByte(')')
	}
	return b.String()
}
