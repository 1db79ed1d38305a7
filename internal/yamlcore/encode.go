// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// A minimal emitter: canonical block-style output that composes back to
// the same value. Styling and comment preservation are out of scope.

package yamlcore

import (
	"math"
	"strconv"
	"strings"
)

const encodeIndent = 2

// Encode renders a value as YAML text ending in a newline.
func Encode(v *Value) ([]byte, error) {
	if v == nil {
		return nil, &EmissionError{Msg: "cannot encode nil value"}
	}
	var b strings.Builder
	if isBlockValue(v) {
		if err := writeBlock(&b, v, 0); err != nil {
			return nil, err
		}
	} else {
		b.WriteString(scalarText(v))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// EncodeAll renders documents separated by "---" markers.
func EncodeAll(docs []*Value) ([]byte, error) {
	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("---\n")
		}
		out, err := Encode(doc)
		if err != nil {
			return nil, err
		}
		b.Write(out)
	}
	return []byte(b.String()), nil
}

// isBlockValue reports whether v is rendered as indented block lines
// rather than inline text.
func isBlockValue(v *Value) bool {
	switch v.Kind() {
	case SequenceKind:
		return len(v.Sequence()) > 0
	case MappingKind:
		return v.Mapping().Len() > 0
	}
	return false
}

func writeBlock(b *strings.Builder, v *Value, indent int) error {
	pad := strings.Repeat(" ", indent)
	switch v.Kind() {
	case SequenceKind:
		for _, item := range v.Sequence() {
			b.WriteString(pad)
			b.WriteByte('-')
			if err := writeEntryValue(b, item, indent); err != nil {
				return err
			}
		}
	case MappingKind:
		for _, p := range v.Mapping().Pairs() {
			if isBlockValue(p.Key) {
				b.WriteString(pad)
				b.WriteByte('?')
				if err := writeEntryValue(b, p.Key, indent); err != nil {
					return err
				}
				b.WriteString(pad)
				b.WriteByte(':')
				if err := writeEntryValue(b, p.Value, indent); err != nil {
					return err
				}
				continue
			}
			b.WriteString(pad)
			b.WriteString(scalarText(p.Key))
			b.WriteByte(':')
			if err := writeEntryValue(b, p.Value, indent); err != nil {
				return err
			}
		}
	default:
		return &EmissionError{Msg: "cannot write " + v.Kind().String() + " in block context"}
	}
	return nil
}

// writeEntryValue finishes a line started with "-", "?", ":" or "key:".
func writeEntryValue(b *strings.Builder, v *Value, indent int) error {
	if isBlockValue(v) {
		b.WriteByte('\n')
		return writeBlock(b, v, indent+encodeIndent)
	}
	b.WriteByte(' ')
	b.WriteString(scalarText(v))
	b.WriteByte('\n')
	return nil
}

func scalarText(v *Value) string {
	switch v.Kind() {
	case NullKind:
		return "null"
	case BoolKind:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case IntKind:
		n, _ := v.AsInt()
		return strconv.FormatInt(n, 10)
	case FloatKind:
		f, _ := v.AsFloat()
		return floatText(f)
	case StringKind:
		s, _ := v.AsString()
		if plainSafe(s) {
			return s
		}
		return quoteDouble(s)
	case SequenceKind:
		return "[]"
	case MappingKind:
		return "{}"
	}
	return "null"
}

// floatText keeps floats recognizable as floats on the way back in.
// Infinities and NaN need an explicit tag since plain implicit typing
// does not resolve them.
func floatText(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "!!float .inf"
	case math.IsInf(f, -1):
		return "!!float -.inf"
	case math.IsNaN(f):
		return "!!float .nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// plainSafe reports whether s can be written unquoted without changing
// its type or structure when read back. The check is conservative; when
// in doubt the string is quoted.
func plainSafe(s string) bool {
	if s == "" {
		return false
	}
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no", "on", "off", "null", "~":
		return false
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}
	first := s[0]
	if !(first >= 'a' && first <= 'z' || first >= 'A' && first <= 'Z' ||
		first >= '0' && first <= '9' || first == '_') {
		return false
	}
	if s[len(s)-1] == ' ' {
		return false
	}
	for _, r := range s {
		switch {
		case r == ' ' || r == '.' || r == '/' || r == '_' || r == '-':
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
		case r > 0x7f && r != 0x85 && r != 0xa0 && r != 0x2028 && r != 0x2029:
		default:
			return false
		}
	}
	return true
}

func quoteDouble(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case 0x1b:
			b.WriteString(`\e`)
		case 0x85:
			b.WriteString(`\N`)
		case 0xa0:
			b.WriteString(`\_`)
		case 0x2028:
			b.WriteString(`\L`)
		case 0x2029:
			b.WriteString(`\P`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
