// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package safeyaml

import (
	"go.yaml.in/safeyaml/internal/yamlcore"
)

// Option configures a Processor at construction time.
type Option func(*config) error

type config struct {
	limits    Limits
	schema    Schema
	handlers  map[string]TagHandler
	profiling bool
	comments  bool
}

func buildConfig(opts []Option) (*config, error) {
	cfg := &config{
		limits:   DefaultLimits(),
		schema:   CoreSchema,
		handlers: make(map[string]TagHandler),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.limits.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithLimits replaces the resource ceilings. The limits are validated at
// construction.
func WithLimits(limits Limits) Option {
	return func(c *config) error {
		c.limits = limits
		return nil
	}
}

// WithStrictLimits applies the strict preset, suitable for small
// documents from hostile sources.
func WithStrictLimits() Option {
	return WithLimits(StrictLimits())
}

// WithPermissiveLimits applies the permissive preset, suitable for large
// trusted documents.
func WithPermissiveLimits() Option {
	return WithLimits(PermissiveLimits())
}

// WithUnlimitedLimits disables every resource ceiling. Use with caution.
func WithUnlimitedLimits() Option {
	return WithLimits(UnlimitedLimits())
}

// WithSchema selects the tag resolution schema for untagged scalars.
func WithSchema(schema Schema) Option {
	return func(c *config) error {
		c.schema = schema
		return nil
	}
}

// WithTagHandler installs a custom handler for one tag URI. Handlers
// take priority over the built-in tag constructions.
func WithTagHandler(uri string, h TagHandler) Option {
	return func(c *config) error {
		if uri == "" {
			return &yamlcore.ConfigError{Msg: "tag handler URI must not be empty"}
		}
		if h == nil {
			return &yamlcore.ConfigError{Msg: "tag handler must not be nil"}
		}
		c.handlers[uri] = h
		return nil
	}
}

// WithProfiling enables per-document resource statistics collection,
// retrievable through Processor.DocumentStats.
func WithProfiling(on bool) Option {
	return func(c *config) error {
		c.profiling = on
		return nil
	}
}

// WithComments makes the scanner surface comment tokens to token-level
// consumers. Composition is unaffected.
func WithComments(on bool) Option {
	return func(c *config) error {
		c.comments = on
		return nil
	}
}
