// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"math"
	"strconv"
	"strings"

	"go.yaml.in/safeyaml"
)

// jsonText renders a composed value as JSON, preserving mapping order.
// Non-string mapping keys are rendered through their debug form, since
// JSON keys must be strings.
func jsonText(v *safeyaml.Value) string {
	var b strings.Builder
	writeJSON(&b, v)
	return b.String()
}

func writeJSON(b *strings.Builder, v *safeyaml.Value) {
	switch v.Kind() {
	case safeyaml.NullKind:
		b.WriteString("null")
	case safeyaml.BoolKind:
		val, _ := v.AsBool()
		b.WriteString(strconv.FormatBool(val))
	case safeyaml.IntKind:
		n, _ := v.AsInt()
		b.WriteString(strconv.FormatInt(n, 10))
	case safeyaml.FloatKind:
		f, _ := v.AsFloat()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			b.WriteString("null")
			return
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case safeyaml.StringKind:
		s, _ := v.AsString()
		b.WriteString(strconv.Quote(s))
	case safeyaml.SequenceKind:
		b.WriteByte('[')
		for i, item := range v.Sequence() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSON(b, item)
		}
		b.WriteByte(']')
	case safeyaml.MappingKind:
		b.WriteByte('{')
		for i, p := range v.Mapping().Pairs() {
			if i > 0 {
				b.WriteByte(',')
			}
			if s, ok := p.Key.AsString(); ok {
				b.WriteString(strconv.Quote(s))
			} else {
				b.WriteString(strconv.Quote(p.Key.String()))
			}
			b.WriteByte(':')
			writeJSON(b, p.Value)
		}
		b.WriteByte('}')
	}
}
