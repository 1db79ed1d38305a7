// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Error types for YAML scanning, parsing and composing.
// Provides structured error reporting with line/column information.

package yamlcore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorContext carries the source line an error points into, so the error
// can render an excerpt with a caret. Suggestion is an optional hint shown
// after the excerpt.
type ErrorContext struct {
	SourceLine string
	Suggestion string
}

func formatMarked(kind string, pos Position, msg string, ctx *ErrorContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "yaml: %s at %s: %s", kind, pos, msg)
	if ctx != nil && ctx.SourceLine != "" {
		fmt.Fprintf(&b, "\n%d | %s\n", pos.Line, ctx.SourceLine)
		pad := len(fmt.Sprint(pos.Line)) + 3 + pos.Column - 1
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString("^ here")
	}
	if ctx != nil && ctx.Suggestion != "" {
		fmt.Fprintf(&b, "\nhint: %s", ctx.Suggestion)
	}
	return b.String()
}

// ScanError reports malformed input detected while tokenizing.
type ScanError struct {
	Pos     Position
	Msg     string
	Context *ErrorContext
}

func (e *ScanError) Error() string {
	return formatMarked("scan error", e.Pos, e.Msg, e.Context)
}

// ParseError reports an event-level grammar violation.
type ParseError struct {
	Pos     Position
	Msg     string
	Context *ErrorContext
}

func (e *ParseError) Error() string {
	return formatMarked("parse error", e.Pos, e.Msg, e.Context)
}

// ConstructionError reports a failure to build a value from a well formed
// event stream, such as an unknown alias or an invalid merge key.
type ConstructionError struct {
	Pos     Position
	Msg     string
	Context *ErrorContext
}

func (e *ConstructionError) Error() string {
	return formatMarked("construction error", e.Pos, e.Msg, e.Context)
}

// TypeError reports a value whose resolved type does not match its tag.
type TypeError struct {
	Pos      Position
	Expected string
	Found    string
}

func (e *TypeError) Error() string {
	return formatMarked("type error", e.Pos,
		fmt.Sprintf("expected %s, found %s", e.Expected, e.Found), nil)
}

// ValueError reports a scalar whose text cannot be converted to its
// resolved type.
type ValueError struct {
	Pos Position
	Msg string
}

func (e *ValueError) Error() string {
	return formatMarked("value error", e.Pos, e.Msg, nil)
}

// IndentationError reports block structure at the wrong column.
type IndentationError struct {
	Pos      Position
	Expected int
	Found    int
}

func (e *IndentationError) Error() string {
	return formatMarked("indentation error", e.Pos,
		fmt.Sprintf("expected indent of %d, found %d", e.Expected, e.Found), nil)
}

// InvalidCharacterError reports a character that cannot appear in the
// current scanning context.
type InvalidCharacterError struct {
	Pos     Position
	Char    rune
	Where   string
	Context *ErrorContext
}

func (e *InvalidCharacterError) Error() string {
	return formatMarked("invalid character", e.Pos,
		fmt.Sprintf("%q in %s", e.Char, e.Where), e.Context)
}

// UnclosedDelimiterError reports a quote, bracket or brace that was opened
// but never closed. Start is where the delimiter was opened, Pos is where
// scanning gave up.
type UnclosedDelimiterError struct {
	Start     Position
	Pos       Position
	Delimiter string
	Context   *ErrorContext
}

func (e *UnclosedDelimiterError) Error() string {
	return formatMarked("unclosed delimiter", e.Pos,
		fmt.Sprintf("%s opened at %s was never closed", e.Delimiter, e.Start), e.Context)
}

// EmissionError reports a failure while serializing a value tree.
type EmissionError struct {
	Msg string
}

func (e *EmissionError) Error() string {
	return "yaml: emission error: " + e.Msg
}

// IOError wraps an underlying read or write failure.
type IOError struct {
	Err error
}

func (e *IOError) Error() string {
	return "yaml: io error: " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UTF8Error reports invalid UTF-8 in the input.
type UTF8Error struct {
	Offset int
}

func (e *UTF8Error) Error() string {
	return fmt.Sprintf("yaml: invalid UTF-8 sequence at byte offset %d", e.Offset)
}

// ConfigError reports an invalid processor configuration.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "yaml: config error: " + e.Msg
}

// LimitExceededError reports a resource ceiling crossed during processing.
// It is raised at the operation that would cross the ceiling, before any
// work past the limit happens.
type LimitExceededError struct {
	Pos      Position
	Resource string
	Msg      string
}

func (e *LimitExceededError) Error() string {
	return formatMarked("limit exceeded", e.Pos,
		fmt.Sprintf("%s: %s", e.Resource, e.Msg), nil)
}

// MultipleError aggregates independent errors from one processing run.
type MultipleError struct {
	Errors []error
}

func (e *MultipleError) Error() string {
	var b strings.Builder
	b.WriteString("yaml: multiple errors:")
	for _, err := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *MultipleError) Unwrap() []error {
	return e.Errors
}

func (e *MultipleError) Is(target error) bool {
	for _, err := range e.Errors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ErrorPosition extracts the source position from any taxonomy error that
// carries one.
func ErrorPosition(err error) (Position, bool) {
	switch e := err.(type) {
	case *ScanError:
		return e.Pos, true
	case *ParseError:
		return e.Pos, true
	case *ConstructionError:
		return e.Pos, true
	case *TypeError:
		return e.Pos, true
	case *ValueError:
		return e.Pos, true
	case *IndentationError:
		return e.Pos, true
	case *InvalidCharacterError:
		return e.Pos, true
	case *UnclosedDelimiterError:
		return e.Pos, true
	case *LimitExceededError:
		return e.Pos, true
	}
	return Position{}, false
}

// AttachContext fills in the source line excerpt on errors that can carry
// one, using the original input. It is a no-op for errors without a
// position or with a context already set.
func AttachContext(err error, src string) error {
	pos, ok := ErrorPosition(err)
	if !ok {
		return err
	}
	line := sourceLine(src, pos.Line)
	if line == "" {
		return err
	}
	switch e := err.(type) {
	case *ScanError:
		if e.Context == nil {
			e.Context = &ErrorContext{SourceLine: line}
		} else if e.Context.SourceLine == "" {
			e.Context.SourceLine = line
		}
	case *ParseError:
		if e.Context == nil {
			e.Context = &ErrorContext{SourceLine: line}
		} else if e.Context.SourceLine == "" {
			e.Context.SourceLine = line
		}
	case *ConstructionError:
		if e.Context == nil {
			e.Context = &ErrorContext{SourceLine: line}
		} else if e.Context.SourceLine == "" {
			e.Context.SourceLine = line
		}
	case *InvalidCharacterError:
		if e.Context == nil {
			e.Context = &ErrorContext{SourceLine: line}
		} else if e.Context.SourceLine == "" {
			e.Context.SourceLine = line
		}
	case *UnclosedDelimiterError:
		if e.Context == nil {
			e.Context = &ErrorContext{SourceLine: line}
		} else if e.Context.SourceLine == "" {
			e.Context.SourceLine = line
		}
	}
	return err
}

func sourceLine(src string, n int) string {
	if n < 1 {
		return ""
	}
	for i := 1; len(src) > 0; i++ {
		j := strings.IndexByte(src, '\n')
		line := src
		if j >= 0 {
			line = src[:j]
			src = src[j+1:]
		} else {
			src = ""
		}
		if i == n {
			return strings.TrimSuffix(line, "\r")
		}
	}
	return ""
}
