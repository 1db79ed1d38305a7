// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// The Scanner turns source text into a token stream. It keeps an indent
// stack and a flow nesting counter so block structure tokens
// (BLOCK-MAPPING-START, BLOCK-SEQUENCE-START, BLOCK-END) can be
// synthesized from indentation, and it tracks "simple key" candidates so
// a KEY token can be inserted retroactively once a ':' shows up on the
// same line.

package yamlcore

import (
	"strings"
	"unicode/utf8"
)

type simpleKey struct {
	possible    bool
	required    bool
	tokenNumber int
	pos         Position
}

// Scanner is a pull-based tokenizer over a fully materialized UTF-8
// document. It performs no I/O.
type Scanner struct {
	src     string
	tracker *ResourceTracker

	pos     Position
	started bool
	done    bool
	ended   bool
	err     error

	tokens      []*Token
	head        int
	tokensTaken int

	indent  int
	indents []int

	flowLevel      int
	simpleKeys     []simpleKey
	allowSimpleKey bool

	captureComments bool
}

// NewScanner validates the input as UTF-8, charges its size against the
// document-size limit, and returns a scanner positioned at the start of
// the stream.
func NewScanner(src string, tracker *ResourceTracker) (*Scanner, error) {
	for i := 0; i < len(src); {
		r, n := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError && n == 1 {
			return nil, &UTF8Error{Offset: i}
		}
		i += n
	}
	if err := tracker.AddBytes(StartPosition(), len(src)); err != nil {
		return nil, err
	}
	s := &Scanner{src: src, tracker: tracker}
	s.Reset()
	return s, nil
}

// CaptureComments makes the scanner emit Comment tokens instead of
// silently discarding comment text. The parser skips them.
func (s *Scanner) CaptureComments(on bool) {
	s.captureComments = on
}

// Reset rewinds the scanner to the start of the stream.
func (s *Scanner) Reset() {
	s.pos = StartPosition()
	s.started = false
	s.done = false
	s.ended = false
	s.err = nil
	s.tokens = s.tokens[:0]
	s.head = 0
	s.tokensTaken = 0
	s.indent = 0
	s.indents = s.indents[:0]
	s.flowLevel = 0
	s.simpleKeys = s.simpleKeys[:0]
	s.allowSimpleKey = true
	if strings.HasPrefix(s.src, "\ufeff") {
		s.pos.Offset = len("\ufeff")
	}
}

// HasMore reports whether Take can still produce a token.
func (s *Scanner) HasMore() bool {
	return !s.ended && s.err == nil
}

// Peek returns the next token without consuming it, or nil at end of
// stream.
func (s *Scanner) Peek() (*Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	for s.needMore() {
		if err := s.fetchNextToken(); err != nil {
			s.err = err
			return nil, err
		}
	}
	if s.head >= len(s.tokens) {
		return nil, nil
	}
	return s.tokens[s.head], nil
}

// Take consumes and returns the next token, or nil at end of stream.
func (s *Scanner) Take() (*Token, error) {
	tok, err := s.Peek()
	if err != nil || tok == nil {
		return nil, err
	}
	s.head++
	s.tokensTaken++
	if tok.Type == TokenStreamEnd {
		s.ended = true
	}
	if s.head > 64 {
		s.tokens = append(s.tokens[:0], s.tokens[s.head:]...)
		s.head = 0
	}
	return tok, nil
}

func (s *Scanner) needMore() bool {
	if s.done {
		return false
	}
	if s.head >= len(s.tokens) {
		return true
	}
	// A pending simple key could still insert a KEY token in front of
	// the head, so keep scanning until it resolves or goes stale.
	for i := range s.simpleKeys {
		sk := &s.simpleKeys[i]
		if sk.possible && sk.tokenNumber == s.tokensTaken {
			return true
		}
	}
	return false
}

func (s *Scanner) emit(tok *Token) {
	s.tokens = append(s.tokens, tok)
}

func (s *Scanner) insertAt(number int, tok *Token) {
	idx := s.head + (number - s.tokensTaken)
	s.tokens = append(s.tokens, nil)
	copy(s.tokens[idx+1:], s.tokens[idx:])
	s.tokens[idx] = tok
}

func (s *Scanner) nextTokenNumber() int {
	return s.tokensTaken + (len(s.tokens) - s.head)
}

// Byte-level cursor helpers. Structure characters are all ASCII; runes
// only matter when copying scalar content.

func (s *Scanner) ch() byte {
	if s.pos.Offset < len(s.src) {
		return s.src[s.pos.Offset]
	}
	return 0
}

func (s *Scanner) at(off int) byte {
	i := s.pos.Offset + off
	if i < len(s.src) {
		return s.src[i]
	}
	return 0
}

func (s *Scanner) eof() bool {
	return s.pos.Offset >= len(s.src)
}

func (s *Scanner) blankzAt(off int) bool {
	i := s.pos.Offset + off
	if i >= len(s.src) {
		return true
	}
	b := s.src[i]
	return isBlank(b) || isBreakByte(b)
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

func isBreakByte(b byte) bool {
	return b == '\n' || b == '\r'
}

func isFlowIndicator(b byte) bool {
	return b == ',' || b == '[' || b == ']' || b == '{' || b == '}'
}

func (s *Scanner) advance() {
	r, n := utf8.DecodeRuneInString(s.src[s.pos.Offset:])
	s.pos = s.pos.Advance(r, n)
}

// readBreak consumes \n, \r or \r\n as a single line break.
func (s *Scanner) readBreak() {
	switch s.ch() {
	case '\n':
		s.advance()
	case '\r':
		if s.at(1) == '\n' {
			s.pos.Offset += 2
		} else {
			s.pos.Offset++
		}
		s.pos.Line++
		s.pos.Column = 1
	}
}

func (s *Scanner) scanError(pos Position, msg string) error {
	return &ScanError{Pos: pos, Msg: msg}
}

// Simple key bookkeeping.

func (s *Scanner) topSimpleKey() *simpleKey {
	return &s.simpleKeys[len(s.simpleKeys)-1]
}

func (s *Scanner) savePossibleSimpleKey() error {
	required := s.flowLevel == 0 && s.indent == s.pos.Column
	if !s.allowSimpleKey {
		return nil
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	*s.topSimpleKey() = simpleKey{
		possible:    true,
		required:    required,
		tokenNumber: s.nextTokenNumber(),
		pos:         s.pos,
	}
	return nil
}

func (s *Scanner) removeSimpleKey() error {
	sk := s.topSimpleKey()
	if sk.possible && sk.required {
		return s.scanError(sk.pos, "could not find expected ':'")
	}
	sk.possible = false
	return nil
}

// A simple key must resolve on the line it started, within a bounded
// distance.
func (s *Scanner) staleSimpleKeys() error {
	for i := range s.simpleKeys {
		sk := &s.simpleKeys[i]
		if !sk.possible {
			continue
		}
		if sk.pos.Line < s.pos.Line || sk.pos.Offset+1024 < s.pos.Offset {
			if sk.required {
				return s.scanError(sk.pos, "could not find expected ':'")
			}
			sk.possible = false
		}
	}
	return nil
}

// Indent stack.

func (s *Scanner) rollIndent(column int, typ TokenType, pos Position, number int) {
	if s.flowLevel > 0 {
		return
	}
	if s.indent < column {
		s.indents = append(s.indents, s.indent)
		s.indent = column
		tok := &Token{Type: typ, Start: pos, End: pos}
		if number < 0 {
			s.emit(tok)
		} else {
			s.insertAt(number, tok)
		}
	}
}

func (s *Scanner) unrollIndent(column int) {
	if s.flowLevel > 0 {
		return
	}
	for s.indent > column && len(s.indents) > 0 {
		s.emit(&Token{Type: TokenBlockEnd, Start: s.pos, End: s.pos})
		s.indent = s.indents[len(s.indents)-1]
		s.indents = s.indents[:len(s.indents)-1]
	}
}

// Token fetching.

func (s *Scanner) fetchNextToken() error {
	if !s.started {
		return s.fetchStreamStart()
	}
	if err := s.scanToNextToken(); err != nil {
		return err
	}
	if err := s.staleSimpleKeys(); err != nil {
		return err
	}
	s.unrollIndent(s.pos.Column)

	if s.eof() {
		return s.fetchStreamEnd()
	}

	c := s.ch()

	if s.pos.Column == 1 && c == '%' {
		return s.fetchDirective()
	}
	if s.pos.Column == 1 && c == '-' && s.at(1) == '-' && s.at(2) == '-' && s.blankzAt(3) {
		return s.fetchDocumentIndicator(TokenDocumentStart)
	}
	if s.pos.Column == 1 && c == '.' && s.at(1) == '.' && s.at(2) == '.' && s.blankzAt(3) {
		return s.fetchDocumentIndicator(TokenDocumentEnd)
	}

	switch {
	case c == '[':
		return s.fetchFlowCollectionStart(TokenFlowSequenceStart)
	case c == '{':
		return s.fetchFlowCollectionStart(TokenFlowMappingStart)
	case c == ']':
		return s.fetchFlowCollectionEnd(TokenFlowSequenceEnd)
	case c == '}':
		return s.fetchFlowCollectionEnd(TokenFlowMappingEnd)
	case c == ',':
		return s.fetchFlowEntry()
	case c == '-' && s.blankzAt(1):
		return s.fetchBlockEntry()
	case c == '?' && s.blankzAt(1):
		return s.fetchKey()
	case c == ':' && (s.flowLevel > 0 || s.blankzAt(1)):
		return s.fetchValue()
	case c == '*':
		return s.fetchAnchor(TokenAlias)
	case c == '&':
		return s.fetchAnchor(TokenAnchor)
	case c == '!':
		return s.fetchTag()
	case c == '|' && s.flowLevel == 0:
		return s.fetchBlockScalar(StyleLiteral)
	case c == '>' && s.flowLevel == 0:
		return s.fetchBlockScalar(StyleFolded)
	case c == '\'':
		return s.fetchFlowScalarToken(true)
	case c == '"':
		return s.fetchFlowScalarToken(false)
	case c == '@' || c == '`':
		return &InvalidCharacterError{Pos: s.pos, Char: rune(c), Where: "document content (reserved indicator)"}
	case c == '\t':
		return &InvalidCharacterError{Pos: s.pos, Char: '\t', Where: "indentation"}
	default:
		return s.fetchPlainScalar()
	}
}

func (s *Scanner) fetchStreamStart() error {
	s.started = true
	s.simpleKeys = append(s.simpleKeys, simpleKey{})
	s.allowSimpleKey = true
	s.emit(&Token{Type: TokenStreamStart, Start: s.pos, End: s.pos})
	return nil
}

func (s *Scanner) fetchStreamEnd() error {
	if s.pos.Column != 1 {
		s.pos.Column = 1
		s.pos.Line++
	}
	s.unrollIndent(0)
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = false
	s.emit(&Token{Type: TokenStreamEnd, Start: s.pos, End: s.pos})
	s.done = true
	return nil
}

func (s *Scanner) scanToNextToken() error {
	for {
		c := s.ch()
		switch {
		case c == ' ':
			s.advance()
		case c == '\t' && (s.flowLevel > 0 || !s.allowSimpleKey):
			s.advance()
		case c == '#':
			start := s.pos
			s.advance()
			commentStart := s.pos.Offset
			for !s.eof() && !isBreakByte(s.ch()) {
				s.advance()
			}
			if s.captureComments {
				text := strings.TrimPrefix(s.src[commentStart:s.pos.Offset], " ")
				s.emit(&Token{Type: TokenComment, Value: text, Start: start, End: s.pos})
			}
		case isBreakByte(c):
			s.readBreak()
			if s.flowLevel == 0 {
				s.allowSimpleKey = true
			}
		default:
			return nil
		}
		if s.eof() {
			return nil
		}
	}
}

func (s *Scanner) fetchDirective() error {
	s.unrollIndent(0)
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = false
	return s.scanDirective()
}

func (s *Scanner) fetchDocumentIndicator(typ TokenType) error {
	s.unrollIndent(0)
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = false
	start := s.pos
	s.advance()
	s.advance()
	s.advance()
	s.emit(&Token{Type: typ, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchFlowCollectionStart(typ TokenType) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeys = append(s.simpleKeys, simpleKey{})
	s.flowLevel++
	s.allowSimpleKey = true
	start := s.pos
	s.advance()
	s.emit(&Token{Type: typ, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchFlowCollectionEnd(typ TokenType) error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	if s.flowLevel > 0 {
		s.flowLevel--
		s.simpleKeys = s.simpleKeys[:len(s.simpleKeys)-1]
	}
	s.allowSimpleKey = false
	start := s.pos
	s.advance()
	s.emit(&Token{Type: typ, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchFlowEntry() error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = true
	start := s.pos
	s.advance()
	s.emit(&Token{Type: TokenFlowEntry, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchBlockEntry() error {
	if s.flowLevel == 0 {
		if !s.allowSimpleKey {
			return s.scanError(s.pos, "block sequence entries are not allowed in this context")
		}
		s.rollIndent(s.pos.Column, TokenBlockSequenceStart, s.pos, -1)
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = true
	start := s.pos
	s.advance()
	s.emit(&Token{Type: TokenBlockEntry, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchKey() error {
	if s.flowLevel == 0 {
		if !s.allowSimpleKey {
			return s.scanError(s.pos, "mapping keys are not allowed in this context")
		}
		s.rollIndent(s.pos.Column, TokenBlockMappingStart, s.pos, -1)
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = s.flowLevel == 0
	start := s.pos
	s.advance()
	s.emit(&Token{Type: TokenKey, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchValue() error {
	sk := s.topSimpleKey()
	if sk.possible {
		s.insertAt(sk.tokenNumber, &Token{Type: TokenKey, Start: sk.pos, End: sk.pos})
		s.rollIndent(sk.pos.Column, TokenBlockMappingStart, sk.pos, sk.tokenNumber)
		sk.possible = false
		s.allowSimpleKey = false
	} else {
		if s.flowLevel == 0 {
			if !s.allowSimpleKey {
				return s.scanError(s.pos, "mapping values are not allowed in this context")
			}
			s.rollIndent(s.pos.Column, TokenBlockMappingStart, s.pos, -1)
		}
		s.allowSimpleKey = s.flowLevel == 0
	}
	start := s.pos
	s.advance()
	s.emit(&Token{Type: TokenValue, Start: start, End: s.pos})
	return nil
}

func isAnchorChar(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' ||
		b == '-' || b == '_'
}

func (s *Scanner) fetchAnchor(typ TokenType) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = false
	start := s.pos
	s.advance() // '&' or '*'
	nameStart := s.pos.Offset
	for !s.eof() && isAnchorChar(s.ch()) {
		s.advance()
	}
	name := s.src[nameStart:s.pos.Offset]
	what := "anchor"
	if typ == TokenAlias {
		what = "alias"
	}
	if name == "" {
		return s.scanError(start, "expected "+what+" name")
	}
	if !s.eof() {
		c := s.ch()
		if !isBlank(c) && !isBreakByte(c) && c != '?' && c != ':' && c != ',' &&
			c != ']' && c != '}' && c != '%' && c != '@' && c != '`' {
			return &InvalidCharacterError{Pos: s.pos, Char: rune(c), Where: what + " name"}
		}
	}
	s.emit(&Token{Type: typ, Value: name, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchTag() error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = false
	start := s.pos
	rawStart := s.pos.Offset
	s.advance() // '!'
	if s.ch() == '<' {
		s.advance()
		for s.ch() != '>' {
			if s.eof() || isBreakByte(s.ch()) {
				return &UnclosedDelimiterError{Start: start, Pos: s.pos, Delimiter: "'!<'"}
			}
			s.advance()
		}
		s.advance() // '>'
	} else {
		for !s.eof() {
			c := s.ch()
			if isBlank(c) || isBreakByte(c) || isFlowIndicator(c) {
				break
			}
			s.advance()
		}
	}
	if !s.blankzAt(0) && !isFlowIndicator(s.ch()) {
		return &InvalidCharacterError{Pos: s.pos, Char: rune(s.ch()), Where: "tag"}
	}
	s.emit(&Token{Type: TokenTag, Value: s.src[rawStart:s.pos.Offset], Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchPlainScalar() error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = false
	start := s.pos
	startOff := s.pos.Offset
	for !s.eof() {
		c := s.ch()
		if isBreakByte(c) {
			break
		}
		if c == '#' && s.pos.Offset > startOff && isBlank(s.src[s.pos.Offset-1]) {
			break
		}
		if c == ':' && (s.blankzAt(1) || s.flowLevel > 0 && isFlowIndicator(s.at(1))) {
			break
		}
		if s.flowLevel > 0 && isFlowIndicator(c) {
			break
		}
		s.advance()
	}
	end := s.pos
	value := strings.TrimRight(s.src[startOff:s.pos.Offset], " \t")
	if err := s.tracker.CheckStringLength(start, len(value)); err != nil {
		return err
	}
	s.emit(&Token{Type: TokenScalar, Value: value, Style: StylePlain, Start: start, End: end})
	return nil
}

var doubleEscapes = map[byte]string{
	'0':  "\x00",
	'a':  "\a",
	'b':  "\b",
	't':  "\t",
	'n':  "\n",
	'v':  "\v",
	'f':  "\f",
	'r':  "\r",
	'e':  "\x1b",
	' ':  " ",
	'"':  "\"",
	'\'': "'",
	'\\': "\\",
	'N':  "",
	'_':  " ",
	'L':  " ",
	'P':  " ",
}

func (s *Scanner) fetchFlowScalarToken(single bool) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = false

	start := s.pos
	quote := byte('"')
	delim := `'"'`
	style := StyleDoubleQuoted
	if single {
		quote = '\''
		delim = `"'"`
		style = StyleSingleQuoted
	}
	s.advance() // opening quote

	var b strings.Builder
	var whitespaces, leadingBreak, trailingBreaks strings.Builder
	for {
		if s.eof() {
			return &UnclosedDelimiterError{Start: start, Pos: s.pos, Delimiter: delim}
		}
		if s.pos.Column == 1 &&
			(s.ch() == '-' && s.at(1) == '-' && s.at(2) == '-' && s.blankzAt(3) ||
				s.ch() == '.' && s.at(1) == '.' && s.at(2) == '.' && s.blankzAt(3)) {
			return &UnclosedDelimiterError{Start: start, Pos: s.pos, Delimiter: delim}
		}

		closed := false
		for !s.eof() && !isBlank(s.ch()) && !isBreakByte(s.ch()) {
			c := s.ch()
			if single && c == '\'' && s.at(1) == '\'' {
				b.WriteByte('\'')
				s.advance()
				s.advance()
				continue
			}
			if c == quote {
				closed = true
				break
			}
			if !single && c == '\\' {
				escPos := s.pos
				s.advance()
				if s.eof() || isBreakByte(s.ch()) {
					return s.scanError(escPos, "unexpected end of line after '\\'")
				}
				rep, ok := doubleEscapes[s.ch()]
				if !ok {
					return s.scanError(escPos, "unknown escape character '\\"+string(rune(s.ch()))+"'")
				}
				b.WriteString(rep)
				s.advance()
				continue
			}
			off := s.pos.Offset
			s.advance()
			b.WriteString(s.src[off:s.pos.Offset])
		}
		if closed {
			break
		}

		// Blanks and breaks fold: a single break becomes a space,
		// further breaks are kept as newlines.
		leadingBlanks := false
		for isBlank(s.ch()) || isBreakByte(s.ch()) {
			if isBlank(s.ch()) {
				if !leadingBlanks {
					whitespaces.WriteByte(s.ch())
				}
				s.advance()
			} else {
				if !leadingBlanks {
					whitespaces.Reset()
					leadingBreak.WriteByte('\n')
					leadingBlanks = true
				} else {
					trailingBreaks.WriteByte('\n')
				}
				s.readBreak()
			}
			if s.eof() {
				break
			}
		}
		if leadingBlanks {
			if trailingBreaks.Len() == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteString(trailingBreaks.String())
			}
			leadingBreak.Reset()
			trailingBreaks.Reset()
		} else {
			b.WriteString(whitespaces.String())
			whitespaces.Reset()
		}
	}
	s.advance() // closing quote

	value := b.String()
	if err := s.tracker.CheckStringLength(start, len(value)); err != nil {
		return err
	}
	s.emit(&Token{Type: TokenScalar, Value: value, Style: style, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) fetchBlockScalar(style ScalarStyle) error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.allowSimpleKey = true
	return s.scanBlockScalar(style)
}

// scanBlockScalar reads a '|' or '>' scalar: the header with its optional
// explicit indent digit and chomping indicator, then the indented body.
func (s *Scanner) scanBlockScalar(style ScalarStyle) error {
	start := s.pos
	s.advance() // '|' or '>'

	// Header: chomping and indent indicators in either order.
	chomping := 0 // -1 strip, 0 clip, +1 keep
	increment := 0
	if c := s.ch(); c == '-' || c == '+' {
		if c == '-' {
			chomping = -1
		} else {
			chomping = 1
		}
		s.advance()
		if c := s.ch(); c >= '1' && c <= '9' {
			increment = int(c - '0')
			s.advance()
		}
	} else if c >= '1' && c <= '9' {
		increment = int(c - '0')
		s.advance()
		if c := s.ch(); c == '-' || c == '+' {
			if c == '-' {
				chomping = -1
			} else {
				chomping = 1
			}
			s.advance()
		}
	} else if c == '0' {
		return s.scanError(s.pos, "block scalar indentation indicator cannot be 0")
	}

	// Rest of the header line: blanks, optional comment, line break.
	for isBlank(s.ch()) {
		s.advance()
	}
	if s.ch() == '#' {
		for !s.eof() && !isBreakByte(s.ch()) {
			s.advance()
		}
	}
	if !s.eof() {
		if !isBreakByte(s.ch()) {
			return s.scanError(s.pos, "unexpected character after block scalar header")
		}
		s.readBreak()
	}

	// Body. indent is the number of leading spaces content lines carry.
	indent := 0
	if increment > 0 {
		if s.indent > 0 {
			indent = s.indent - 1 + increment
		} else {
			indent = increment
		}
	}

	var b strings.Builder
	var leadingBreak, trailingBreaks strings.Builder
	if err := s.scanBlockScalarBreaks(&indent, &trailingBreaks, start); err != nil {
		return err
	}

	leadingBlank := false
	for s.pos.Column-1 == indent && !s.eof() {
		trailingBlank := isBlank(s.ch())
		if style == StyleFolded && leadingBreak.Len() > 0 && !leadingBlank && !trailingBlank {
			if trailingBreaks.Len() == 0 {
				b.WriteByte(' ')
			}
		} else {
			b.WriteString(leadingBreak.String())
		}
		leadingBreak.Reset()
		b.WriteString(trailingBreaks.String())
		trailingBreaks.Reset()

		leadingBlank = isBlank(s.ch())
		lineStart := s.pos.Offset
		for !s.eof() && !isBreakByte(s.ch()) {
			s.advance()
		}
		b.WriteString(s.src[lineStart:s.pos.Offset])
		if s.eof() {
			break
		}
		s.readBreak()
		leadingBreak.WriteByte('\n')
		if err := s.scanBlockScalarBreaks(&indent, &trailingBreaks, start); err != nil {
			return err
		}
	}

	if chomping != -1 {
		b.WriteString(leadingBreak.String())
	}
	if chomping == 1 {
		b.WriteString(trailingBreaks.String())
	}

	value := b.String()
	if err := s.tracker.CheckStringLength(start, len(value)); err != nil {
		return err
	}
	s.emit(&Token{Type: TokenScalar, Value: value, Style: style, Start: start, End: s.pos})
	return nil
}

// scanBlockScalarBreaks skips indentation and collects blank lines. While
// *indent is still 0 it also auto-detects the body indentation from the
// first non-blank line.
func (s *Scanner) scanBlockScalarBreaks(indent *int, breaks *strings.Builder, start Position) error {
	maxIndent := 0
	for {
		for (*indent == 0 || s.pos.Column-1 < *indent) && s.ch() == ' ' {
			s.advance()
		}
		if s.pos.Column-1 > maxIndent {
			maxIndent = s.pos.Column - 1
		}
		if *indent > 0 && s.pos.Column-1 < *indent && s.ch() == '\t' {
			return s.scanError(s.pos, "found a tab character where an indentation space is expected")
		}
		if !isBreakByte(s.ch()) || s.eof() {
			break
		}
		s.readBreak()
		breaks.WriteByte('\n')
	}
	if *indent == 0 {
		*indent = maxIndent
		if *indent < s.indent {
			*indent = s.indent
		}
		if *indent < 1 {
			*indent = 1
		}
	}
	return nil
}

func (s *Scanner) scanDirective() error {
	start := s.pos
	s.advance() // '%'
	nameStart := s.pos.Offset
	for !s.eof() {
		c := s.ch()
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			break
		}
		s.advance()
	}
	name := s.src[nameStart:s.pos.Offset]
	switch name {
	case "YAML":
		if err := s.scanVersionDirective(start); err != nil {
			return err
		}
	case "TAG":
		if err := s.scanTagDirective(start); err != nil {
			return err
		}
	default:
		// Unknown directives are skipped.
		for !s.eof() && !isBreakByte(s.ch()) {
			s.advance()
		}
	}
	for isBlank(s.ch()) {
		s.advance()
	}
	if s.ch() == '#' {
		for !s.eof() && !isBreakByte(s.ch()) {
			s.advance()
		}
	}
	if !s.eof() {
		if !isBreakByte(s.ch()) {
			return s.scanError(s.pos, "unexpected character after directive")
		}
		s.readBreak()
	}
	return nil
}

func (s *Scanner) scanVersionDirective(start Position) error {
	for isBlank(s.ch()) {
		s.advance()
	}
	major, ok := s.scanDirectiveNumber()
	if !ok {
		return s.scanError(s.pos, "expected version number in %YAML directive")
	}
	if s.ch() != '.' {
		return s.scanError(s.pos, "expected '.' in %YAML directive version")
	}
	s.advance()
	minor, ok := s.scanDirectiveNumber()
	if !ok {
		return s.scanError(s.pos, "expected version number in %YAML directive")
	}
	s.emit(&Token{Type: TokenVersionDirective, Major: major, Minor: minor, Start: start, End: s.pos})
	return nil
}

func (s *Scanner) scanDirectiveNumber() (int, bool) {
	n := 0
	seen := false
	for c := s.ch(); c >= '0' && c <= '9'; c = s.ch() {
		n = n*10 + int(c-'0')
		seen = true
		s.advance()
		if n > 9999 {
			return 0, false
		}
	}
	return n, seen
}

func (s *Scanner) scanTagDirective(start Position) error {
	for isBlank(s.ch()) {
		s.advance()
	}
	if s.ch() != '!' {
		return s.scanError(s.pos, "expected '!' in %TAG directive handle")
	}
	handleStart := s.pos.Offset
	s.advance()
	for !s.eof() && isAnchorChar(s.ch()) {
		s.advance()
	}
	if s.ch() == '!' {
		s.advance()
	}
	handle := s.src[handleStart:s.pos.Offset]
	if !isBlank(s.ch()) {
		return s.scanError(s.pos, "expected whitespace after %TAG directive handle")
	}
	for isBlank(s.ch()) {
		s.advance()
	}
	prefixStart := s.pos.Offset
	for !s.eof() && !isBlank(s.ch()) && !isBreakByte(s.ch()) {
		s.advance()
	}
	prefix := s.src[prefixStart:s.pos.Offset]
	if prefix == "" {
		return s.scanError(s.pos, "expected prefix in %TAG directive")
	}
	s.emit(&Token{Type: TokenTagDirective, Handle: handle, Prefix: prefix, Start: start, End: s.pos})
	return nil
}
