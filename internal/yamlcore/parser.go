// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// The Parser turns the token stream into structural events. It is a
// state machine: the current state consumes tokens and produces exactly
// one event per step, pushing the follow-up state for nested nodes.

package yamlcore

import "fmt"

type parserState int

const (
	parseStreamStartState parserState = iota
	parseImplicitDocumentStartState
	parseDocumentStartState
	parseDocumentContentState
	parseDocumentEndState
	parseBlockNodeState
	parseBlockSequenceEntryState
	parseIndentlessSequenceEntryState
	parseBlockMappingKeyState
	parseBlockMappingValueState
	parseFlowSequenceFirstEntryState
	parseFlowSequenceEntryState
	parseFlowSequenceEntryMappingKeyState
	parseFlowSequenceEntryMappingValueState
	parseFlowSequenceEntryMappingEndState
	parseFlowMappingFirstKeyState
	parseFlowMappingKeyState
	parseFlowMappingValueState
	parseFlowMappingEmptyValueState
	parseEndState
)

// Parser drives a Scanner and exposes a pull-based event stream.
type Parser struct {
	scanner *Scanner

	state  parserState
	states []parserState

	version       *VersionDirective
	tagDirectives []TagDirective

	pending *Event
	ended   bool
	err     error
}

func NewParser(scanner *Scanner) *Parser {
	return &Parser{scanner: scanner, state: parseStreamStartState}
}

// Reset rewinds the parser and its scanner to the start of the stream.
func (p *Parser) Reset() {
	p.scanner.Reset()
	p.state = parseStreamStartState
	p.states = p.states[:0]
	p.version = nil
	p.tagDirectives = nil
	p.pending = nil
	p.ended = false
	p.err = nil
}

// HasMore reports whether Take can still produce an event.
func (p *Parser) HasMore() bool {
	return !p.ended && p.err == nil
}

// Peek returns the next event without consuming it, or nil at end of
// stream.
func (p *Parser) Peek() (*Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.pending == nil && p.state != parseEndState {
		ev, err := p.stateMachine()
		if err != nil {
			p.err = err
			return nil, err
		}
		p.pending = ev
	}
	return p.pending, nil
}

// Take consumes and returns the next event, or nil at end of stream.
func (p *Parser) Take() (*Event, error) {
	ev, err := p.Peek()
	if err != nil || ev == nil {
		return nil, err
	}
	p.pending = nil
	if ev.Type == EventStreamEnd {
		p.ended = true
	}
	return ev, nil
}

// peekToken returns the next non-comment token without consuming it.
func (p *Parser) peekToken() (*Token, error) {
	for {
		tok, err := p.scanner.Peek()
		if err != nil || tok == nil {
			return nil, err
		}
		if tok.Type != TokenComment {
			return tok, nil
		}
		if _, err := p.scanner.Take(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) takeToken() (*Token, error) {
	tok, err := p.peekToken()
	if err != nil || tok == nil {
		return nil, err
	}
	return p.scanner.Take()
}

func (p *Parser) parseError(pos Position, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) popState() parserState {
	st := p.states[len(p.states)-1]
	p.states = p.states[:len(p.states)-1]
	return st
}

func (p *Parser) stateMachine() (*Event, error) {
	switch p.state {
	case parseStreamStartState:
		return p.parseStreamStart()
	case parseImplicitDocumentStartState:
		return p.parseDocumentStart(true)
	case parseDocumentStartState:
		return p.parseDocumentStart(false)
	case parseDocumentContentState:
		return p.parseDocumentContent()
	case parseDocumentEndState:
		return p.parseDocumentEnd()
	case parseBlockNodeState:
		return p.parseNode(true, false)
	case parseBlockSequenceEntryState:
		return p.parseBlockSequenceEntry()
	case parseIndentlessSequenceEntryState:
		return p.parseIndentlessSequenceEntry()
	case parseBlockMappingKeyState:
		return p.parseBlockMappingKey()
	case parseBlockMappingValueState:
		return p.parseBlockMappingValue()
	case parseFlowSequenceFirstEntryState:
		return p.parseFlowSequenceEntry(true)
	case parseFlowSequenceEntryState:
		return p.parseFlowSequenceEntry(false)
	case parseFlowSequenceEntryMappingKeyState:
		return p.parseFlowSequenceEntryMappingKey()
	case parseFlowSequenceEntryMappingValueState:
		return p.parseFlowSequenceEntryMappingValue()
	case parseFlowSequenceEntryMappingEndState:
		return p.parseFlowSequenceEntryMappingEnd()
	case parseFlowMappingFirstKeyState:
		return p.parseFlowMappingKey(true)
	case parseFlowMappingKeyState:
		return p.parseFlowMappingKey(false)
	case parseFlowMappingValueState:
		return p.parseFlowMappingValue(false)
	case parseFlowMappingEmptyValueState:
		return p.parseFlowMappingValue(true)
	}
	return nil, p.parseError(Position{}, "invalid parser state %d", p.state)
}

func (p *Parser) parseStreamStart() (*Event, error) {
	tok, err := p.takeToken()
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.Type != TokenStreamStart {
		return nil, p.parseError(Position{}, "did not find expected stream start")
	}
	p.state = parseImplicitDocumentStartState
	return &Event{Type: EventStreamStart, Pos: tok.Start}, nil
}

func (p *Parser) parseDocumentStart(implicit bool) (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if !implicit {
		// Skip stray DOCUMENT-END tokens left over from "...".
		for tok != nil && tok.Type == TokenDocumentEnd {
			if _, err := p.takeToken(); err != nil {
				return nil, err
			}
			if tok, err = p.peekToken(); err != nil {
				return nil, err
			}
		}
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	if tok.Type == TokenStreamEnd {
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = parseEndState
		return &Event{Type: EventStreamEnd, Pos: tok.Start}, nil
	}
	if implicit && tok.Type != TokenVersionDirective && tok.Type != TokenTagDirective &&
		tok.Type != TokenDocumentStart {
		p.seedDefaultDirectives()
		p.states = append(p.states, parseDocumentEndState)
		p.state = parseBlockNodeState
		return &Event{Type: EventDocumentStart, Implicit: true, Pos: tok.Start}, nil
	}
	version, directives, err := p.processDirectives()
	if err != nil {
		return nil, err
	}
	tok, err = p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.Type != TokenDocumentStart {
		pos := Position{}
		if tok != nil {
			pos = tok.Start
		}
		return nil, p.parseError(pos, "did not find expected '---' document start")
	}
	if _, err := p.takeToken(); err != nil {
		return nil, err
	}
	p.states = append(p.states, parseDocumentEndState)
	p.state = parseDocumentContentState
	return &Event{
		Type:          EventDocumentStart,
		Version:       version,
		TagDirectives: directives,
		Pos:           tok.Start,
	}, nil
}

func (p *Parser) seedDefaultDirectives() {
	p.tagDirectives = nil
}

func (p *Parser) processDirectives() (*VersionDirective, []TagDirective, error) {
	var version *VersionDirective
	var directives []TagDirective
	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, nil, err
		}
		if tok == nil {
			break
		}
		switch tok.Type {
		case TokenVersionDirective:
			if version != nil {
				return nil, nil, p.parseError(tok.Start, "found duplicate %%YAML directive")
			}
			if tok.Major != 1 {
				return nil, nil, p.parseError(tok.Start, "found incompatible YAML document (version %d.%d)", tok.Major, tok.Minor)
			}
			version = &VersionDirective{Major: tok.Major, Minor: tok.Minor}
			if _, err := p.takeToken(); err != nil {
				return nil, nil, err
			}
		case TokenTagDirective:
			for _, d := range directives {
				if d.Handle == tok.Handle {
					return nil, nil, p.parseError(tok.Start, "found duplicate %%TAG directive for handle %q", tok.Handle)
				}
			}
			directives = append(directives, TagDirective{Handle: tok.Handle, Prefix: tok.Prefix})
			if _, err := p.takeToken(); err != nil {
				return nil, nil, err
			}
		default:
			p.version = version
			p.tagDirectives = directives
			return version, directives, nil
		}
	}
	p.version = version
	p.tagDirectives = directives
	return version, directives, nil
}

func (p *Parser) parseDocumentContent() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	switch tok.Type {
	case TokenVersionDirective, TokenTagDirective, TokenDocumentStart,
		TokenDocumentEnd, TokenStreamEnd:
		p.state = p.popState()
		return emptyScalarEvent(tok.Start), nil
	}
	return p.parseNode(true, false)
}

func (p *Parser) parseDocumentEnd() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	implicit := true
	pos := Position{}
	if tok != nil {
		pos = tok.Start
		if tok.Type == TokenDocumentEnd {
			if _, err := p.takeToken(); err != nil {
				return nil, err
			}
			implicit = false
		}
	}
	// Directives do not carry across documents.
	p.version = nil
	p.tagDirectives = nil
	p.state = parseDocumentStartState
	return &Event{Type: EventDocumentEnd, Implicit: implicit, Pos: pos}, nil
}

func emptyScalarEvent(pos Position) *Event {
	return &Event{Type: EventScalar, Style: StylePlain, Pos: pos}
}

func (p *Parser) parseNode(block, indentlessSequence bool) (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}

	if tok.Type == TokenAlias {
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = p.popState()
		return &Event{Type: EventAlias, Anchor: tok.Value, Pos: tok.Start}, nil
	}

	var anchor, tag string
	start := tok.Start
	if tok.Type == TokenAnchor {
		anchor = tok.Value
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		if tok, err = p.peekToken(); err != nil {
			return nil, err
		}
		if tok != nil && tok.Type == TokenTag {
			tag = tok.Value
			if _, err := p.takeToken(); err != nil {
				return nil, err
			}
			if tok, err = p.peekToken(); err != nil {
				return nil, err
			}
		}
	} else if tok.Type == TokenTag {
		tag = tok.Value
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		if tok, err = p.peekToken(); err != nil {
			return nil, err
		}
		if tok != nil && tok.Type == TokenAnchor {
			anchor = tok.Value
			if _, err := p.takeToken(); err != nil {
				return nil, err
			}
			if tok, err = p.peekToken(); err != nil {
				return nil, err
			}
		}
	}
	if tok == nil {
		return nil, p.parseError(start, "unexpected end of token stream")
	}

	switch {
	case indentlessSequence && tok.Type == TokenBlockEntry:
		p.state = parseIndentlessSequenceEntryState
		return &Event{Type: EventSequenceStart, Anchor: anchor, Tag: tag, Pos: start}, nil
	case tok.Type == TokenScalar:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = p.popState()
		return &Event{
			Type:   EventScalar,
			Anchor: anchor,
			Tag:    tag,
			Value:  tok.Value,
			Style:  tok.Style,
			Pos:    tok.Start,
		}, nil
	case tok.Type == TokenFlowSequenceStart:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = parseFlowSequenceFirstEntryState
		return &Event{Type: EventSequenceStart, Anchor: anchor, Tag: tag, Flow: true, Pos: start}, nil
	case tok.Type == TokenFlowMappingStart:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = parseFlowMappingFirstKeyState
		return &Event{Type: EventMappingStart, Anchor: anchor, Tag: tag, Flow: true, Pos: start}, nil
	case block && tok.Type == TokenBlockSequenceStart:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = parseBlockSequenceEntryState
		return &Event{Type: EventSequenceStart, Anchor: anchor, Tag: tag, Pos: start}, nil
	case block && tok.Type == TokenBlockMappingStart:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = parseBlockMappingKeyState
		return &Event{Type: EventMappingStart, Anchor: anchor, Tag: tag, Pos: start}, nil
	case anchor != "" || tag != "":
		p.state = p.popState()
		ev := emptyScalarEvent(start)
		ev.Anchor = anchor
		ev.Tag = tag
		return ev, nil
	}
	what := "flow"
	if block {
		what = "block"
	}
	return nil, p.parseError(tok.Start, "while parsing a %s node, did not find expected node content (got %s)", what, tok.Type)
}

func (p *Parser) parseBlockSequenceEntry() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	switch tok.Type {
	case TokenBlockEntry:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		next, err := p.peekToken()
		if err != nil {
			return nil, err
		}
		if next != nil && (next.Type == TokenBlockEntry || next.Type == TokenBlockEnd) {
			p.state = parseBlockSequenceEntryState
			return emptyScalarEvent(tok.End), nil
		}
		p.states = append(p.states, parseBlockSequenceEntryState)
		return p.parseNode(true, false)
	case TokenBlockEnd:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = p.popState()
		return &Event{Type: EventSequenceEnd, Pos: tok.Start}, nil
	}
	return nil, p.parseError(tok.Start, "while parsing a block collection, did not find expected '-' indicator (got %s)", tok.Type)
}

func (p *Parser) parseIndentlessSequenceEntry() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	if tok.Type != TokenBlockEntry {
		p.state = p.popState()
		return &Event{Type: EventSequenceEnd, Pos: tok.Start}, nil
	}
	if _, err := p.takeToken(); err != nil {
		return nil, err
	}
	next, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if next != nil && (next.Type == TokenBlockEntry || next.Type == TokenKey ||
		next.Type == TokenValue || next.Type == TokenBlockEnd) {
		p.state = parseIndentlessSequenceEntryState
		return emptyScalarEvent(tok.End), nil
	}
	p.states = append(p.states, parseIndentlessSequenceEntryState)
	return p.parseNode(true, false)
}

func (p *Parser) parseBlockMappingKey() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	switch tok.Type {
	case TokenKey:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		next, err := p.peekToken()
		if err != nil {
			return nil, err
		}
		if next != nil && (next.Type == TokenKey || next.Type == TokenValue ||
			next.Type == TokenBlockEnd) {
			p.state = parseBlockMappingValueState
			return emptyScalarEvent(tok.End), nil
		}
		p.states = append(p.states, parseBlockMappingValueState)
		return p.parseNode(true, true)
	case TokenBlockEnd:
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		p.state = p.popState()
		return &Event{Type: EventMappingEnd, Pos: tok.Start}, nil
	}
	return nil, p.parseError(tok.Start, "while parsing a block mapping, did not find expected key (got %s)", tok.Type)
}

func (p *Parser) parseBlockMappingValue() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	if tok.Type != TokenValue {
		p.state = parseBlockMappingKeyState
		return emptyScalarEvent(tok.Start), nil
	}
	if _, err := p.takeToken(); err != nil {
		return nil, err
	}
	next, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if next != nil && (next.Type == TokenKey || next.Type == TokenValue ||
		next.Type == TokenBlockEnd) {
		p.state = parseBlockMappingKeyState
		return emptyScalarEvent(tok.End), nil
	}
	p.states = append(p.states, parseBlockMappingKeyState)
	return p.parseNode(true, true)
}

// parseFlowSequenceEntry handles the entries of a flow sequence whose
// start token parseNode has already consumed. Entries after the first
// must be preceded by ','.
func (p *Parser) parseFlowSequenceEntry(first bool) (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	if tok.Type != TokenFlowSequenceEnd {
		if !first {
			if tok.Type != TokenFlowEntry {
				return nil, p.parseError(tok.Start, "while parsing a flow sequence, did not find expected ',' or ']' (got %s)", tok.Type)
			}
			if _, err := p.takeToken(); err != nil {
				return nil, err
			}
			if tok, err = p.peekToken(); err != nil {
				return nil, err
			}
			if tok == nil {
				return nil, p.parseError(Position{}, "unexpected end of token stream")
			}
		}
		if tok.Type == TokenKey {
			if _, err := p.takeToken(); err != nil {
				return nil, err
			}
			p.state = parseFlowSequenceEntryMappingKeyState
			return &Event{Type: EventMappingStart, Flow: true, Pos: tok.Start}, nil
		}
		if tok.Type != TokenFlowSequenceEnd {
			p.states = append(p.states, parseFlowSequenceEntryState)
			return p.parseNode(false, false)
		}
	}
	if _, err := p.takeToken(); err != nil {
		return nil, err
	}
	p.state = p.popState()
	return &Event{Type: EventSequenceEnd, Pos: tok.Start}, nil
}

func (p *Parser) parseFlowSequenceEntryMappingKey() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	if tok.Type == TokenValue || tok.Type == TokenFlowEntry ||
		tok.Type == TokenFlowSequenceEnd {
		p.state = parseFlowSequenceEntryMappingValueState
		return emptyScalarEvent(tok.Start), nil
	}
	p.states = append(p.states, parseFlowSequenceEntryMappingValueState)
	return p.parseNode(false, false)
}

func (p *Parser) parseFlowSequenceEntryMappingValue() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	if tok.Type == TokenValue {
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		next, err := p.peekToken()
		if err != nil {
			return nil, err
		}
		if next == nil || next.Type != TokenFlowEntry && next.Type != TokenFlowSequenceEnd {
			p.states = append(p.states, parseFlowSequenceEntryMappingEndState)
			return p.parseNode(false, false)
		}
		p.state = parseFlowSequenceEntryMappingEndState
		return emptyScalarEvent(tok.End), nil
	}
	p.state = parseFlowSequenceEntryMappingEndState
	return emptyScalarEvent(tok.Start), nil
}

func (p *Parser) parseFlowSequenceEntryMappingEnd() (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	pos := Position{}
	if tok != nil {
		pos = tok.Start
	}
	p.state = parseFlowSequenceEntryState
	return &Event{Type: EventMappingEnd, Pos: pos}, nil
}

func (p *Parser) parseFlowMappingKey(first bool) (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	if tok.Type != TokenFlowMappingEnd {
		if !first {
			if tok.Type != TokenFlowEntry {
				return nil, p.parseError(tok.Start, "while parsing a flow mapping, did not find expected ',' or '}' (got %s)", tok.Type)
			}
			if _, err := p.takeToken(); err != nil {
				return nil, err
			}
			if tok, err = p.peekToken(); err != nil {
				return nil, err
			}
			if tok == nil {
				return nil, p.parseError(Position{}, "unexpected end of token stream")
			}
		}
		if tok.Type == TokenKey {
			if _, err := p.takeToken(); err != nil {
				return nil, err
			}
			next, err := p.peekToken()
			if err != nil {
				return nil, err
			}
			if next != nil && (next.Type == TokenValue || next.Type == TokenFlowEntry ||
				next.Type == TokenFlowMappingEnd) {
				p.state = parseFlowMappingValueState
				return emptyScalarEvent(tok.End), nil
			}
			p.states = append(p.states, parseFlowMappingValueState)
			return p.parseNode(false, false)
		}
		if tok.Type != TokenFlowMappingEnd {
			p.states = append(p.states, parseFlowMappingEmptyValueState)
			return p.parseNode(false, false)
		}
	}
	if _, err := p.takeToken(); err != nil {
		return nil, err
	}
	p.state = p.popState()
	return &Event{Type: EventMappingEnd, Pos: tok.Start}, nil
}

func (p *Parser) parseFlowMappingValue(empty bool) (*Event, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.parseError(Position{}, "unexpected end of token stream")
	}
	if empty {
		p.state = parseFlowMappingKeyState
		return emptyScalarEvent(tok.Start), nil
	}
	if tok.Type == TokenValue {
		if _, err := p.takeToken(); err != nil {
			return nil, err
		}
		next, err := p.peekToken()
		if err != nil {
			return nil, err
		}
		if next == nil || next.Type != TokenFlowEntry && next.Type != TokenFlowMappingEnd {
			p.states = append(p.states, parseFlowMappingKeyState)
			return p.parseNode(false, false)
		}
		p.state = parseFlowMappingKeyState
		return emptyScalarEvent(tok.End), nil
	}
	p.state = parseFlowMappingKeyState
	return emptyScalarEvent(tok.Start), nil
}
