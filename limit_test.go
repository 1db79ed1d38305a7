// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package safeyaml_test

import (
	"errors"
	"fmt"
	"strings"
	"time"

	. "gopkg.in/check.v1"

	yaml "go.yaml.in/safeyaml"
)

// aliasBomb builds a billion-laughs style document: a 9-wide alias
// fan-out repeated over the given number of levels.
func aliasBomb(levels int) []byte {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= levels; i++ {
		fmt.Fprintf(&b, "l%d: &l%d [", i, i)
		for j := 0; j < 9; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", i-1)
		}
		b.WriteString("]\n")
	}
	return []byte(b.String())
}

func (s *S) TestLimitBombs(c *C) {
	tests := []struct {
		name     string
		data     []byte
		opts     []yaml.Option
		resource string
	}{
		{
			name:     "alias fan-out under default limits",
			data:     aliasBomb(7),
			resource: "complexity",
		},
		{
			name:     "alias fan-out under strict limits",
			data:     aliasBomb(7),
			opts:     []yaml.Option{yaml.WithStrictLimits()},
			resource: "complexity",
		},
		{
			name:     "deeply nested flow sequences",
			data:     []byte(strings.Repeat("[", 2000)),
			resource: "nesting depth",
		},
		{
			name:     "deeply nested flow mappings",
			data:     []byte("x: " + strings.Repeat("{a: ", 1500)),
			resource: "nesting depth",
		},
		{
			name:     "too many anchors",
			data:     []byte(strings.Repeat("- &a x\n", 101)),
			opts:     []yaml.Option{yaml.WithStrictLimits()},
			resource: "anchors",
		},
		{
			name:     "oversized scalar",
			data:     []byte("big: " + strings.Repeat("a", 65*1024) + "\n"),
			opts:     []yaml.Option{yaml.WithStrictLimits()},
			resource: "string length",
		},
		{
			name:     "oversized document",
			data:     []byte("# " + strings.Repeat("a", 1024*1024) + "\nx: 1\n"),
			opts:     []yaml.Option{yaml.WithStrictLimits()},
			resource: "document size",
		},
		{
			name:     "oversized collection",
			data:     []byte("[" + strings.Repeat("1,", 10_001) + "]"),
			opts:     []yaml.Option{yaml.WithStrictLimits()},
			resource: "collection size",
		},
	}
	for _, t := range tests {
		_, err := yaml.Load(t.data, t.opts...)
		c.Assert(err, NotNil, Commentf("case: %s", t.name))
		var lim *yaml.LimitExceededError
		c.Assert(errors.As(err, &lim), Equals, true,
			Commentf("case: %s: got %T: %v", t.name, err, err))
		c.Assert(lim.Resource, Equals, t.resource, Commentf("case: %s", t.name))
	}
}

func (s *S) TestLimitBombFailsFast(c *C) {
	// The fan-out must die on accounting, long before materializing the
	// would-be 9^7 items.
	start := time.Now()
	_, err := yaml.Load(aliasBomb(7))
	c.Assert(err, NotNil)
	c.Assert(time.Since(start) < 5*time.Second, Equals, true)
}

func (s *S) TestTimeoutLimit(c *C) {
	limits := yaml.DefaultLimits()
	limits.Timeout = time.Nanosecond
	_, err := yaml.Load([]byte("a: [1, 2, 3]\n"), yaml.WithLimits(limits))
	var lim *yaml.LimitExceededError
	c.Assert(errors.As(err, &lim), Equals, true)
	c.Assert(lim.Resource, Equals, "time")
}

func (s *S) TestAliasDepthLimit(c *C) {
	limits := yaml.DefaultLimits()
	limits.MaxAliasDepth = 2

	_, err := yaml.Load([]byte("deep: &d [[[1]]]\nuse: *d\n"), yaml.WithLimits(limits))
	var ce *yaml.ConstructionError
	c.Assert(errors.As(err, &ce), Equals, true)
	c.Assert(strings.Contains(ce.Msg, "maximum alias depth"), Equals, true)

	_, err = yaml.Load([]byte("flat: &f [1, 2]\nuse: *f\n"), yaml.WithLimits(limits))
	c.Assert(err, IsNil)
}

func (s *S) TestPermissiveLimits(c *C) {
	deep := strings.Repeat("[", 1200) + "1" + strings.Repeat("]", 1200)
	_, err := yaml.Load([]byte(deep))
	c.Assert(err, NotNil)
	_, err = yaml.Load([]byte(deep), yaml.WithPermissiveLimits())
	c.Assert(err, IsNil)
}

func (s *S) TestLimitErrorsAreHumanReadable(c *C) {
	_, err := yaml.Load(aliasBomb(7))
	c.Assert(err, NotNil)
	c.Assert(err, ErrorMatches, `(?s)yaml: limit exceeded at line \d+, column \d+: complexity: maximum complexity score 1,000,000 exceeded.*`)
}
