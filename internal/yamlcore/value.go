// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// The composed document model. Values are usable as mapping keys, so
// equality and hashing are defined for every kind, including composite
// ones.

package yamlcore

import (
	"math"
	"strconv"
	"strings"

	"github.com/segmentio/fasthash/fnv1a"
)

// Kind discriminates the payload of a Value.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	}
	return "unknown"
}

// Value is one node of a composed document tree.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []*Value
	m    *Mapping
}

func NullValue() *Value           { return &Value{kind: NullKind} }
func BoolValue(b bool) *Value     { return &Value{kind: BoolKind, b: b} }
func IntValue(i int64) *Value     { return &Value{kind: IntKind, i: i} }
func FloatValue(f float64) *Value { return &Value{kind: FloatKind, f: f} }
func StringValue(s string) *Value { return &Value{kind: StringKind, s: s} }

func SequenceValue(items ...*Value) *Value {
	return &Value{kind: SequenceKind, seq: items}
}

func MappingValue() *Value {
	return &Value{kind: MappingKind, m: NewMapping()}
}

func (v *Value) Kind() Kind { return v.kind }

func (v *Value) IsNull() bool { return v.kind == NullKind }

func (v *Value) AsBool() (bool, bool) {
	if v.kind != BoolKind {
		return false, false
	}
	return v.b, true
}

func (v *Value) AsInt() (int64, bool) {
	if v.kind != IntKind {
		return 0, false
	}
	return v.i, true
}

func (v *Value) AsFloat() (float64, bool) {
	switch v.kind {
	case FloatKind:
		return v.f, true
	case IntKind:
		return float64(v.i), true
	}
	return 0, false
}

func (v *Value) AsString() (string, bool) {
	if v.kind != StringKind {
		return "", false
	}
	return v.s, true
}

// Sequence returns the items of a sequence value, or nil for other kinds.
func (v *Value) Sequence() []*Value {
	if v.kind != SequenceKind {
		return nil
	}
	return v.seq
}

// Append adds an item to a sequence value.
func (v *Value) Append(item *Value) {
	v.seq = append(v.seq, item)
}

// Mapping returns the pairs of a mapping value, or nil for other kinds.
func (v *Value) Mapping() *Mapping {
	if v.kind != MappingKind {
		return nil
	}
	return v.m
}

// Get looks a key up in a mapping value.
func (v *Value) Get(key *Value) (*Value, bool) {
	if v.kind != MappingKind {
		return nil, false
	}
	return v.m.Get(key)
}

// GetString looks a string key up in a mapping value.
func (v *Value) GetString(key string) (*Value, bool) {
	return v.Get(StringValue(key))
}

// GetIndex returns the i-th item of a sequence value.
func (v *Value) GetIndex(i int) (*Value, bool) {
	if v.kind != SequenceKind || i < 0 || i >= len(v.seq) {
		return nil, false
	}
	return v.seq[i], true
}

// Equal reports deep equality. All NaN payloads compare equal and negative
// zero equals positive zero, so values behave consistently as keys.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case BoolKind:
		return v.b == o.b
	case IntKind:
		return v.i == o.i
	case FloatKind:
		return normalizeFloatBits(v.f) == normalizeFloatBits(o.f)
	case StringKind:
		return v.s == o.s
	case SequenceKind:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case MappingKind:
		if v.m.Len() != o.m.Len() {
			return false
		}
		for i, p := range v.m.pairs {
			q := o.m.pairs[i]
			if !p.Key.Equal(q.Key) || !p.Value.Equal(q.Value) {
				return false
			}
		}
		return true
	}
	return false
}

func normalizeFloatBits(f float64) uint64 {
	if math.IsNaN(f) {
		return math.MaxUint64
	}
	if f == 0 {
		return 0
	}
	return math.Float64bits(f)
}

// Hash returns a 64-bit hash consistent with Equal.
func (v *Value) Hash() uint64 {
	return v.addHash(fnv1a.Init64)
}

func (v *Value) addHash(h uint64) uint64 {
	h = fnv1a.AddUint64(h, uint64(v.kind))
	switch v.kind {
	case BoolKind:
		if v.b {
			h = fnv1a.AddUint64(h, 1)
		} else {
			h = fnv1a.AddUint64(h, 0)
		}
	case IntKind:
		h = fnv1a.AddUint64(h, uint64(v.i))
	case FloatKind:
		h = fnv1a.AddUint64(h, normalizeFloatBits(v.f))
	case StringKind:
		h = fnv1a.AddString64(h, v.s)
	case SequenceKind:
		for _, item := range v.seq {
			h = item.addHash(h)
		}
	case MappingKind:
		for _, p := range v.m.pairs {
			h = p.Key.addHash(h)
			h = p.Value.addHash(h)
		}
	}
	return h
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{kind: v.kind, b: v.b, i: v.i, f: v.f, s: v.s}
	switch v.kind {
	case SequenceKind:
		out.seq = make([]*Value, len(v.seq))
		for i, item := range v.seq {
			out.seq[i] = item.Clone()
		}
	case MappingKind:
		out.m = NewMapping()
		for _, p := range v.m.pairs {
			out.m.Set(p.Key.Clone(), p.Value.Clone())
		}
	}
	return out
}

func (v *Value) String() string {
	var b strings.Builder
	v.writeDebug(&b)
	return b.String()
}

func (v *Value) writeDebug(b *strings.Builder) {
	switch v.kind {
	case NullKind:
		b.WriteString("null")
	case BoolKind:
		b.WriteString(strconv.FormatBool(v.b))
	case IntKind:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case FloatKind:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case StringKind:
		b.WriteString(strconv.Quote(v.s))
	case SequenceKind:
		b.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				b.WriteString(", ")
			}
			item.writeDebug(b)
		}
		b.WriteByte(']')
	case MappingKind:
		b.WriteByte('{')
		for i, p := range v.m.pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			p.Key.writeDebug(b)
			b.WriteString(": ")
			p.Value.writeDebug(b)
		}
		b.WriteByte('}')
	}
}

// Pair is one key/value entry of a Mapping.
type Pair struct {
	Key   *Value
	Value *Value
}

// Mapping is an insertion-ordered association from Value to Value. Keys
// may be composite; lookup goes through a hash index over Value.Hash.
type Mapping struct {
	pairs []Pair
	index map[uint64][]int
}

func NewMapping() *Mapping {
	return &Mapping{index: make(map[uint64][]int)}
}

func (m *Mapping) Len() int {
	return len(m.pairs)
}

// Pairs returns the entries in insertion order. The slice is shared;
// callers must not mutate it.
func (m *Mapping) Pairs() []Pair {
	return m.pairs
}

func (m *Mapping) find(key *Value) int {
	for _, i := range m.index[key.Hash()] {
		if m.pairs[i].Key.Equal(key) {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (m *Mapping) Get(key *Value) (*Value, bool) {
	if i := m.find(key); i >= 0 {
		return m.pairs[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (m *Mapping) Has(key *Value) bool {
	return m.find(key) >= 0
}

// Set stores value under key, replacing an existing entry in place so
// insertion order is preserved.
func (m *Mapping) Set(key, value *Value) {
	if i := m.find(key); i >= 0 {
		m.pairs[i].Value = value
		return
	}
	h := key.Hash()
	m.index[h] = append(m.index[h], len(m.pairs))
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// SetIfAbsent stores value under key only when the key is not already
// present, and reports whether it inserted.
func (m *Mapping) SetIfAbsent(key, value *Value) bool {
	if m.find(key) >= 0 {
		return false
	}
	h := key.Hash()
	m.index[h] = append(m.index[h], len(m.pairs))
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
	return true
}
