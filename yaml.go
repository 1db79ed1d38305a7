// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package safeyaml implements a resource-limited YAML 1.2 processor.
//
// Documents are composed through a Scanner -> Parser -> Composer
// pipeline where every structural step is charged against a configurable
// set of Limits, so hostile input (deep nesting, alias amplification,
// oversized strings) fails with LimitExceededError instead of exhausting
// memory or CPU.
//
// This file contains:
// - Type and constant re-exports from internal/yamlcore
// - The Processor pull API (NewProcessor, ComposeDocument)
// - One-shot helpers (Load, LoadAll, Encode, EncodeAll)

package safeyaml

import (
	"go.yaml.in/safeyaml/internal/yamlcore"
)

//-----------------------------------------------------------------------------
// Re-exports
//-----------------------------------------------------------------------------

// Value is a composed document node.
type Value = yamlcore.Value

// Kind discriminates Value payloads.
type Kind = yamlcore.Kind

const (
	NullKind     = yamlcore.NullKind
	BoolKind     = yamlcore.BoolKind
	IntKind      = yamlcore.IntKind
	FloatKind    = yamlcore.FloatKind
	StringKind   = yamlcore.StringKind
	SequenceKind = yamlcore.SequenceKind
	MappingKind  = yamlcore.MappingKind
)

// Value constructors.
var (
	Null     = yamlcore.NullValue
	Bool     = yamlcore.BoolValue
	Int      = yamlcore.IntValue
	Float    = yamlcore.FloatValue
	String   = yamlcore.StringValue
	Sequence = yamlcore.SequenceValue
	MapValue = yamlcore.MappingValue
)

// Mapping is the insertion-ordered pair container inside mapping values.
type Mapping = yamlcore.Mapping

// Pair is one mapping entry.
type Pair = yamlcore.Pair

// Position locates a point in the source text.
type Position = yamlcore.Position

// Limits is the set of resource ceilings for one processor.
type Limits = yamlcore.Limits

// ResourceStats is a snapshot of resource usage counters.
type ResourceStats = yamlcore.ResourceStats

// Limit presets.
var (
	DefaultLimits    = yamlcore.DefaultLimits
	StrictLimits     = yamlcore.StrictLimits
	PermissiveLimits = yamlcore.PermissiveLimits
	UnlimitedLimits  = yamlcore.UnlimitedLimits
)

// Tag is a resolved tag identity.
type Tag = yamlcore.Tag

// TagKind classifies resolved tags.
type TagKind = yamlcore.TagKind

// TagHandler constructs and represents values for a custom tag URI.
type TagHandler = yamlcore.TagHandler

// Schema selects tag resolution rules for untagged scalars.
type Schema = yamlcore.Schema

const (
	CoreSchema     = yamlcore.CoreSchema
	JSONSchema     = yamlcore.JSONSchema
	FailsafeSchema = yamlcore.FailsafeSchema
)

// Error taxonomy.
type (
	ScanError              = yamlcore.ScanError
	ParseError             = yamlcore.ParseError
	ConstructionError      = yamlcore.ConstructionError
	TypeError              = yamlcore.TypeError
	ValueError             = yamlcore.ValueError
	IndentationError       = yamlcore.IndentationError
	InvalidCharacterError  = yamlcore.InvalidCharacterError
	UnclosedDelimiterError = yamlcore.UnclosedDelimiterError
	EmissionError          = yamlcore.EmissionError
	IOError                = yamlcore.IOError
	UTF8Error              = yamlcore.UTF8Error
	ConfigError            = yamlcore.ConfigError
	LimitExceededError     = yamlcore.LimitExceededError
	MultipleError          = yamlcore.MultipleError
)

//-----------------------------------------------------------------------------
// Processor
//-----------------------------------------------------------------------------

// Processor composes documents from one in-memory input, one document
// per ComposeDocument call. A Processor must not be used from multiple
// goroutines concurrently; distinct Processors are independent.
type Processor struct {
	src       string
	tracker   *yamlcore.ResourceTracker
	composer  *yamlcore.Composer
	profiling bool
	collected []ResourceStats
}

// NewProcessor builds a processor over data. The input is validated as
// UTF-8 and charged against the document-size limit up front.
func NewProcessor(data []byte, opts ...Option) (*Processor, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	src := string(data)
	tracker := yamlcore.NewResourceTracker(cfg.limits)
	scanner, err := yamlcore.NewScanner(src, tracker)
	if err != nil {
		return nil, err
	}
	scanner.CaptureComments(cfg.comments)
	parser := yamlcore.NewParser(scanner)
	resolver := yamlcore.NewTagResolverWithSchema(cfg.schema)
	for uri, h := range cfg.handlers {
		resolver.RegisterHandler(uri, h)
	}
	return &Processor{
		src:       src,
		tracker:   tracker,
		composer:  yamlcore.NewComposer(parser, tracker, resolver),
		profiling: cfg.profiling,
	}, nil
}

// HasDocument reports whether another document remains in the stream.
func (p *Processor) HasDocument() bool {
	return p.composer.HasDocument()
}

// ComposeDocument composes the next document. It returns (nil, nil)
// exactly at the end of the stream.
func (p *Processor) ComposeDocument() (*Value, error) {
	doc, err := p.composer.ComposeDocument()
	if err != nil {
		return nil, yamlcore.AttachContext(err, p.src)
	}
	if p.profiling && doc != nil {
		p.collected = append(p.collected, p.tracker.Stats())
	}
	return doc, nil
}

// Reset rewinds the processor to the start of the stream.
func (p *Processor) Reset() {
	p.composer.Reset()
	p.collected = nil
}

// Stats snapshots the resource counters of the document currently or
// most recently composed.
func (p *Processor) Stats() ResourceStats {
	return p.tracker.Stats()
}

// DocumentStats returns the per-document snapshots collected under
// WithProfiling, in document order.
func (p *Processor) DocumentStats() []ResourceStats {
	return p.collected
}

//-----------------------------------------------------------------------------
// One-shot helpers
//-----------------------------------------------------------------------------

// Load composes the first document of data. It returns (nil, nil) when
// the input contains no document at all.
func Load(data []byte, opts ...Option) (*Value, error) {
	p, err := NewProcessor(data, opts...)
	if err != nil {
		return nil, err
	}
	return p.ComposeDocument()
}

// LoadAll composes every document of data, in order.
func LoadAll(data []byte, opts ...Option) ([]*Value, error) {
	p, err := NewProcessor(data, opts...)
	if err != nil {
		return nil, err
	}
	var docs []*Value
	for {
		doc, err := p.ComposeDocument()
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return docs, nil
		}
		docs = append(docs, doc)
	}
}

// Encode renders a value as canonical YAML text.
func Encode(v *Value) ([]byte, error) {
	return yamlcore.Encode(v)
}

// EncodeAll renders documents separated by "---" markers.
func EncodeAll(docs []*Value) ([]byte, error) {
	return yamlcore.EncodeAll(docs)
}
