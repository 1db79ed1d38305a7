// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// YAML 1.2 tag resolution: handle expansion through %TAG directives,
// kind identification, and construction of tagged scalar values.

package yamlcore

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TagKind classifies a resolved tag URI.
type TagKind int

const (
	TagNull TagKind = iota
	TagBool
	TagInt
	TagFloat
	TagStr
	TagSeq
	TagMap
	TagBinary
	TagTimestamp
	TagSet
	TagOmap
	TagPairs
	TagCustom
)

func (k TagKind) String() string {
	switch k {
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagStr:
		return "str"
	case TagSeq:
		return "seq"
	case TagMap:
		return "map"
	case TagBinary:
		return "binary"
	case TagTimestamp:
		return "timestamp"
	case TagSet:
		return "set"
	case TagOmap:
		return "omap"
	case TagPairs:
		return "pairs"
	}
	return "custom"
}

// Tag is a resolved tag identity: the canonical URI, the surface text it
// was written as, and the kind derived from the URI.
type Tag struct {
	URI      string
	Original string
	Kind     TagKind
}

const yamlTagPrefix = "tag:yaml.org,2002:"

var tagKindsByURI = map[string]TagKind{
	yamlTagPrefix + "null":      TagNull,
	yamlTagPrefix + "bool":      TagBool,
	yamlTagPrefix + "int":       TagInt,
	yamlTagPrefix + "float":     TagFloat,
	yamlTagPrefix + "str":       TagStr,
	yamlTagPrefix + "seq":       TagSeq,
	yamlTagPrefix + "map":       TagMap,
	yamlTagPrefix + "binary":    TagBinary,
	yamlTagPrefix + "timestamp": TagTimestamp,
	yamlTagPrefix + "set":       TagSet,
	yamlTagPrefix + "omap":      TagOmap,
	yamlTagPrefix + "pairs":     TagPairs,
}

func identifyTagKind(uri string) TagKind {
	if k, ok := tagKindsByURI[uri]; ok {
		return k
	}
	return TagCustom
}

// Schema selects the tag resolution rules for untagged scalars.
type Schema int

const (
	// CoreSchema is the YAML 1.2 core schema.
	CoreSchema Schema = iota
	// JSONSchema restricts implicit typing to the JSON subset.
	JSONSchema
	// FailsafeSchema disables implicit typing entirely.
	FailsafeSchema
)

// DefaultTag returns the tag an untagged scalar falls back to.
func (s Schema) DefaultTag() string {
	return yamlTagPrefix + "str"
}

// AllowsImplicitTyping reports whether plain scalars may resolve to
// non-string types.
func (s Schema) AllowsImplicitTyping() bool {
	return s != FailsafeSchema
}

// TagHandler constructs and represents values for one custom tag URI.
type TagHandler interface {
	Construct(value string) (*Value, error)
	Represent(value *Value) (string, error)
}

// TagResolver expands tag surface syntax to canonical URIs and builds
// values for tagged scalars. Custom handlers take priority over the
// built-in constructions.
type TagResolver struct {
	directives map[string]string
	handlers   map[string]TagHandler
	schema     Schema
}

func NewTagResolver() *TagResolver {
	return NewTagResolverWithSchema(CoreSchema)
}

func NewTagResolverWithSchema(schema Schema) *TagResolver {
	r := &TagResolver{
		directives: make(map[string]string),
		handlers:   make(map[string]TagHandler),
		schema:     schema,
	}
	r.seedDefaults()
	return r
}

func (r *TagResolver) seedDefaults() {
	r.directives["!"] = "!"
	r.directives["!!"] = yamlTagPrefix
}

// Schema returns the schema the resolver applies to untagged scalars.
func (r *TagResolver) Schema() Schema {
	return r.schema
}

// AddDirective registers a %TAG handle/prefix pair.
func (r *TagResolver) AddDirective(handle, prefix string) {
	r.directives[handle] = prefix
}

// ClearDirectives drops document-scoped directives and reseeds the
// default "!" and "!!" handles.
func (r *TagResolver) ClearDirectives() {
	r.directives = make(map[string]string)
	r.seedDefaults()
}

// RegisterHandler installs a custom handler for a tag URI.
func (r *TagResolver) RegisterHandler(uri string, h TagHandler) {
	r.handlers[uri] = h
}

// Resolve expands tag surface text to a Tag. It accepts full "tag:"
// URIs, verbatim "!<uri>", secondary "!!suffix", named "!h!suffix"
// (unknown handles fall back to the primary handle), primary "!suffix",
// and bare text, which resolves to the schema default.
func (r *TagResolver) Resolve(text string) (Tag, error) {
	var uri, original string
	switch {
	case strings.HasPrefix(text, "tag:"):
		uri, original = text, text
	case strings.HasPrefix(text, "!<") && strings.HasSuffix(text, ">"):
		uri, original = text[2:len(text)-1], text
	case strings.HasPrefix(text, "!!"):
		prefix, ok := r.directives["!!"]
		if !ok {
			prefix = yamlTagPrefix
		}
		uri, original = prefix+text[2:], text
	case strings.HasPrefix(text, "!"):
		if end := strings.IndexByte(text[1:], '!'); end >= 0 {
			handle := text[:end+2]
			suffix := text[end+2:]
			if prefix, ok := r.directives[handle]; ok {
				uri, original = prefix+suffix, text
				break
			}
		}
		prefix, ok := r.directives["!"]
		if !ok {
			prefix = "!"
		}
		uri, original = prefix+text[1:], text
	default:
		uri, original = r.schema.DefaultTag(), "!"+text
	}
	return Tag{URI: uri, Original: original, Kind: identifyTagKind(uri)}, nil
}

// ApplyTag builds a value for a tagged scalar. A registered custom
// handler for the URI wins over the built-in constructions.
func (r *TagResolver) ApplyTag(tag Tag, value string, pos Position) (*Value, error) {
	if h, ok := r.handlers[tag.URI]; ok {
		return h.Construct(value)
	}
	switch tag.Kind {
	case TagNull:
		return NullValue(), nil
	case TagBool:
		return r.constructBool(value, pos)
	case TagInt:
		return r.constructInt(value, pos)
	case TagFloat:
		return r.constructFloat(value, pos)
	case TagStr:
		return StringValue(value), nil
	case TagBinary:
		return r.constructBinary(value, pos)
	case TagTimestamp:
		return r.constructTimestamp(value)
	}
	return StringValue(value), nil
}

func (r *TagResolver) constructBool(value string, pos Position) (*Value, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "on":
		return BoolValue(true), nil
	case "false", "no", "off":
		return BoolValue(false), nil
	}
	return nil, &TypeError{Pos: pos, Expected: "boolean", Found: "'" + value + "'"}
}

func (r *TagResolver) constructInt(value string, pos Position) (*Value, error) {
	var n int64
	var err error
	switch {
	case strings.HasPrefix(value, "0x"), strings.HasPrefix(value, "0X"):
		n, err = strconv.ParseInt(value[2:], 16, 64)
	case strings.HasPrefix(value, "0o"), strings.HasPrefix(value, "0O"):
		n, err = strconv.ParseInt(value[2:], 8, 64)
	case strings.HasPrefix(value, "0b"), strings.HasPrefix(value, "0B"):
		n, err = strconv.ParseInt(value[2:], 2, 64)
	default:
		n, err = strconv.ParseInt(strings.ReplaceAll(value, "_", ""), 10, 64)
	}
	if err != nil {
		return nil, &TypeError{Pos: pos, Expected: "integer", Found: "'" + value + "'"}
	}
	return IntValue(n), nil
}

func (r *TagResolver) constructFloat(value string, pos Position) (*Value, error) {
	switch strings.ToLower(value) {
	case ".inf", "+.inf":
		return FloatValue(math.Inf(1)), nil
	case "-.inf":
		return FloatValue(math.Inf(-1)), nil
	case ".nan":
		return FloatValue(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, "_", ""), 64)
	if err != nil {
		return nil, &TypeError{Pos: pos, Expected: "float", Found: "'" + value + "'"}
	}
	return FloatValue(f), nil
}

func (r *TagResolver) constructBinary(value string, pos Position) (*Value, error) {
	clean := strings.Map(func(c rune) rune {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			return -1
		}
		return c
	}, value)
	bytes, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, &TypeError{Pos: pos, Expected: "base64-encoded binary", Found: "invalid base64: '" + value + "'"}
	}
	if s := string(bytes); strings.ToValidUTF8(s, "") == s {
		return StringValue(s), nil
	}
	return StringValue(fmt.Sprintf("[binary data: %d bytes]", len(bytes))), nil
}

func (r *TagResolver) constructTimestamp(value string) (*Value, error) {
	// Stored as a tagged string; full ISO 8601 parsing is a possible
	// extension.
	return StringValue("timestamp:" + value), nil
}
