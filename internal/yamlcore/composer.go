// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// The Composer turns the event stream into Value trees, one document at
// a time. It owns the anchors table and charges every structural step
// against the resource tracker, which is what keeps alias-amplification
// and deep-nesting attacks bounded.

package yamlcore

import (
	"fmt"
	"strconv"
	"strings"
)

// Composer builds document values from parser events.
type Composer struct {
	parser   *Parser
	tracker  *ResourceTracker
	resolver *TagResolver

	anchors     map[string]*Value
	openAnchors []string
	depth       int
	position    Position
	err         error
}

func NewComposer(parser *Parser, tracker *ResourceTracker, resolver *TagResolver) *Composer {
	return &Composer{
		parser:   parser,
		tracker:  tracker,
		resolver: resolver,
		anchors:  make(map[string]*Value),
	}
}

// Position reports where composition last made progress, for error
// reporting by callers.
func (c *Composer) Position() Position {
	return c.position
}

// HasDocument reports whether another document can be composed.
func (c *Composer) HasDocument() bool {
	if c.err != nil {
		return false
	}
	ev, err := c.parser.Peek()
	if err != nil || ev == nil {
		return false
	}
	return ev.Type != EventStreamEnd
}

// Reset rewinds the whole pipeline to the start of the stream. The
// input bytes stay charged against the document-size budget.
func (c *Composer) Reset() {
	c.parser.Reset()
	c.tracker.ResetDocument()
	c.anchors = make(map[string]*Value)
	c.openAnchors = c.openAnchors[:0]
	c.depth = 0
	c.position = Position{}
	c.err = nil
}

// ComposeDocument composes the next document, returning nil exactly at
// the end of the stream. Anchors, counters and tag directives are scoped
// to one document.
func (c *Composer) ComposeDocument() (*Value, error) {
	if c.err != nil {
		return nil, c.err
	}
	doc, err := c.composeDocument()
	if err != nil {
		c.err = err
		return nil, err
	}
	return doc, nil
}

func (c *Composer) composeDocument() (*Value, error) {
	for {
		ev, err := c.parser.Peek()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, nil
		}
		switch ev.Type {
		case EventStreamStart, EventDocumentEnd:
			if _, err := c.parser.Take(); err != nil {
				return nil, err
			}
			continue
		case EventStreamEnd:
			if _, err := c.parser.Take(); err != nil {
				return nil, err
			}
			return nil, nil
		case EventDocumentStart:
			c.startDocument(ev)
			if _, err := c.parser.Take(); err != nil {
				return nil, err
			}
		}
		break
	}

	doc, err := c.composeNode()
	if err != nil {
		return nil, err
	}

	// Consume the matching document end.
	for {
		ev, err := c.parser.Peek()
		if err != nil {
			return nil, err
		}
		if ev == nil || ev.Type != EventDocumentEnd {
			break
		}
		if _, err := c.parser.Take(); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (c *Composer) startDocument(ev *Event) {
	c.tracker.ResetDocument()
	c.anchors = make(map[string]*Value)
	c.openAnchors = c.openAnchors[:0]
	c.depth = 0
	c.resolver.ClearDirectives()
	for _, d := range ev.TagDirectives {
		c.resolver.AddDirective(d.Handle, d.Prefix)
	}
}

func (c *Composer) constructionError(pos Position, format string, args ...any) error {
	return &ConstructionError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (c *Composer) composeNode() (*Value, error) {
	ev, err := c.parser.Take()
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, nil
	}
	c.position = ev.Pos

	switch ev.Type {
	case EventStreamStart, EventDocumentStart:
		return c.composeNode()
	case EventStreamEnd, EventDocumentEnd, EventSequenceEnd, EventMappingEnd:
		return nil, nil
	case EventScalar:
		var v *Value
		if ev.Tag != "" {
			v, err = c.composeTaggedScalar(ev)
		} else {
			v, err = c.composeScalar(ev)
		}
		if err != nil {
			return nil, err
		}
		if ev.Anchor != "" {
			if err := c.registerAnchor(ev.Anchor, v, ev.Pos); err != nil {
				return nil, err
			}
		}
		return v, nil
	case EventSequenceStart:
		return c.composeCollection(ev, c.composeSequence)
	case EventMappingStart:
		return c.composeCollection(ev, c.composeMapping)
	case EventAlias:
		return c.composeAlias(ev)
	}
	return nil, c.constructionError(ev.Pos, "unexpected event %s", ev.Type)
}

func (c *Composer) composeCollection(ev *Event, compose func(*Event) (*Value, error)) (*Value, error) {
	if ev.Anchor != "" {
		c.openAnchors = append(c.openAnchors, ev.Anchor)
	}
	v, err := compose(ev)
	if ev.Anchor != "" {
		c.openAnchors = c.openAnchors[:len(c.openAnchors)-1]
	}
	if err != nil {
		return nil, err
	}
	if ev.Anchor != "" && v != nil {
		if err := c.registerAnchor(ev.Anchor, v, ev.Pos); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (c *Composer) registerAnchor(name string, v *Value, pos Position) error {
	if err := c.tracker.AddAnchor(pos); err != nil {
		return err
	}
	c.anchors[name] = v.Clone()
	return nil
}

func (c *Composer) composeSequence(start *Event) (*Value, error) {
	c.depth++
	if err := c.tracker.CheckDepth(start.Pos, c.depth); err != nil {
		return nil, err
	}
	seq := SequenceValue()
	for {
		if err := c.tracker.CheckDeadline(c.position); err != nil {
			return nil, err
		}
		ev, err := c.parser.Peek()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			break
		}
		if ev.Type == EventSequenceEnd {
			if _, err := c.parser.Take(); err != nil {
				return nil, err
			}
			break
		}
		// An out-of-place document or stream boundary terminates the
		// collection without being consumed.
		if ev.Type == EventDocumentStart || ev.Type == EventDocumentEnd ||
			ev.Type == EventStreamEnd {
			break
		}
		node, err := c.composeNode()
		if err != nil {
			return nil, err
		}
		if node == nil {
			break
		}
		if err := c.tracker.AddCollectionItem(ev.Pos); err != nil {
			return nil, err
		}
		if err := c.tracker.AddComplexity(ev.Pos, 1); err != nil {
			return nil, err
		}
		seq.Append(node)
	}
	c.depth--
	return seq, nil
}

func (c *Composer) composeMapping(start *Event) (*Value, error) {
	c.depth++
	if err := c.tracker.CheckDepth(start.Pos, c.depth); err != nil {
		return nil, err
	}
	m := MappingValue()
	for {
		if err := c.tracker.CheckDeadline(c.position); err != nil {
			return nil, err
		}
		ev, err := c.parser.Peek()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			break
		}
		if ev.Type == EventMappingEnd {
			if _, err := c.parser.Take(); err != nil {
				return nil, err
			}
			break
		}
		if ev.Type == EventDocumentStart || ev.Type == EventDocumentEnd ||
			ev.Type == EventStreamEnd {
			break
		}
		key, err := c.composeNode()
		if err != nil {
			return nil, err
		}
		if key == nil {
			break
		}
		value, err := c.composeNode()
		if err != nil {
			return nil, err
		}
		if value == nil {
			value = NullValue()
		}
		if ks, ok := key.AsString(); ok && ks == "<<" {
			if err := c.processMergeKey(m.Mapping(), value); err != nil {
				return nil, err
			}
			continue
		}
		if err := c.tracker.AddCollectionItem(ev.Pos); err != nil {
			return nil, err
		}
		if err := c.tracker.AddComplexity(ev.Pos, 2); err != nil {
			return nil, err
		}
		m.Mapping().Set(key, value)
	}
	c.depth--
	return m, nil
}

// processMergeKey folds an already composed merge value into the
// accumulator. Merged entries never displace keys that are already
// present, and keys set normally after the merge overwrite merged ones.
func (c *Composer) processMergeKey(dst *Mapping, merge *Value) error {
	switch merge.Kind() {
	case MappingKind:
		for _, p := range merge.Mapping().Pairs() {
			dst.SetIfAbsent(p.Key, p.Value)
		}
	case SequenceKind:
		for _, src := range merge.Sequence() {
			if src.Kind() != MappingKind {
				return c.constructionError(c.position, "merge key sequence can only contain mappings")
			}
			for _, p := range src.Mapping().Pairs() {
				dst.SetIfAbsent(p.Key, p.Value)
			}
		}
	default:
		return c.constructionError(c.position, "merge key value must be a mapping or a sequence of mappings")
	}
	return nil
}

func (c *Composer) composeAlias(ev *Event) (*Value, error) {
	name := ev.Anchor
	for _, open := range c.openAnchors {
		if open == name {
			return nil, c.constructionError(ev.Pos, "cyclic alias reference detected: '%s'", name)
		}
	}
	// The depth check fires before the anchor is even looked up.
	if err := c.tracker.EnterAlias(ev.Pos); err != nil {
		return nil, err
	}
	defer c.tracker.ExitAlias()

	target, ok := c.anchors[name]
	if !ok {
		return nil, c.constructionError(ev.Pos, "unknown anchor '%s'", name)
	}
	// A shallow expansion stack is not enough on its own: reject targets
	// whose own nesting exceeds the alias depth budget.
	if d := structureDepth(target); d > c.tracker.Limits().MaxAliasDepth {
		return nil, c.constructionError(ev.Pos,
			"alias '%s' creates structure with depth %d exceeding maximum alias depth %d",
			name, d, c.tracker.Limits().MaxAliasDepth)
	}
	// Expansion is charged by the size of the expanded structure.
	if err := c.tracker.AddComplexity(ev.Pos, valueComplexity(target)); err != nil {
		return nil, err
	}
	return target.Clone(), nil
}

func (c *Composer) composeTaggedScalar(ev *Event) (*Value, error) {
	tag, err := c.resolver.Resolve(ev.Tag)
	if err != nil {
		return nil, err
	}
	return c.resolver.ApplyTag(tag, ev.Value, ev.Pos)
}

// composeScalar applies implicit typing. Only plain scalars are eligible;
// every quoted or block scalar stays a string.
func (c *Composer) composeScalar(ev *Event) (*Value, error) {
	value := ev.Value
	if ev.Style != StylePlain || !c.resolver.Schema().AllowsImplicitTyping() {
		return StringValue(value), nil
	}
	if value == "" {
		return NullValue(), nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return IntValue(n), nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return FloatValue(f), nil
	}
	switch strings.ToLower(value) {
	case "true", "yes", "on":
		return BoolValue(true), nil
	case "false", "no", "off":
		return BoolValue(false), nil
	case "null", "~":
		return NullValue(), nil
	}
	return StringValue(value), nil
}

// valueComplexity scores a value: 1 per scalar, plus per-item and
// per-pair surcharges for collections, recursively.
func valueComplexity(v *Value) int {
	score := 1
	switch v.Kind() {
	case SequenceKind:
		score += len(v.Sequence())
		for _, item := range v.Sequence() {
			score += valueComplexity(item)
		}
	case MappingKind:
		score += v.Mapping().Len() * 2
		for _, p := range v.Mapping().Pairs() {
			score += valueComplexity(p.Key)
			score += valueComplexity(p.Value)
		}
	}
	return score
}

func structureDepth(v *Value) int {
	switch v.Kind() {
	case SequenceKind:
		max := 0
		for _, item := range v.Sequence() {
			if d := structureDepth(item); d > max {
				max = d
			}
		}
		return 1 + max
	case MappingKind:
		max := 0
		for _, p := range v.Mapping().Pairs() {
			if d := structureDepth(p.Key); d > max {
				max = d
			}
			if d := structureDepth(p.Value); d > max {
				max = d
			}
		}
		return 1 + max
	}
	return 0
}
