// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package yamlcore

import (
	"math"
	"testing"
	"time"

	"go.yaml.in/safeyaml/internal/testutil/assert"
)

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, 1000, l.MaxDepth)
	assert.Equal(t, 10_000, l.MaxAnchors)
	assert.Equal(t, 100*1024*1024, l.MaxDocumentSize)
	assert.Equal(t, 10*1024*1024, l.MaxStringLength)
	assert.Equal(t, 100, l.MaxAliasDepth)
	assert.Equal(t, 1_000_000, l.MaxCollectionSize)
	assert.Equal(t, 1_000_000, l.MaxComplexityScore)
	assert.Equal(t, time.Duration(0), l.Timeout)
	assert.NoError(t, l.Validate())
}

func TestStrictLimits(t *testing.T) {
	l := StrictLimits()
	assert.Equal(t, 50, l.MaxDepth)
	assert.Equal(t, 100, l.MaxAnchors)
	assert.Equal(t, 1024*1024, l.MaxDocumentSize)
	assert.Equal(t, 64*1024, l.MaxStringLength)
	assert.Equal(t, 5, l.MaxAliasDepth)
	assert.Equal(t, 10_000, l.MaxCollectionSize)
	assert.Equal(t, 10_000, l.MaxComplexityScore)
	assert.Equal(t, 5*time.Second, l.Timeout)
	assert.NoError(t, l.Validate())
}

func TestPermissiveLimits(t *testing.T) {
	l := PermissiveLimits()
	assert.Equal(t, 10_000, l.MaxDepth)
	assert.Equal(t, 100_000, l.MaxAnchors)
	assert.Equal(t, 1024*1024*1024, l.MaxDocumentSize)
	assert.Equal(t, 100*1024*1024, l.MaxStringLength)
	assert.Equal(t, 1000, l.MaxAliasDepth)
	assert.Equal(t, 10_000_000, l.MaxCollectionSize)
	assert.Equal(t, 100_000_000, l.MaxComplexityScore)
	assert.NoError(t, l.Validate())
}

func TestUnlimitedLimits(t *testing.T) {
	l := UnlimitedLimits()
	assert.Equal(t, math.MaxInt, l.MaxDepth)
	assert.Equal(t, math.MaxInt, l.MaxDocumentSize)
	assert.Equal(t, time.Duration(0), l.Timeout)
	assert.NoError(t, l.Validate())
}

func TestLimitsValidate(t *testing.T) {
	l := DefaultLimits()
	l.MaxDepth = 0
	err := l.Validate()
	assert.NotNil(t, err)
	assert.ErrorAs(t, err, new(*ConfigError))

	l = DefaultLimits()
	l.MaxAnchors = -1
	assert.NotNil(t, l.Validate())

	l = DefaultLimits()
	l.Timeout = -time.Second
	assert.NotNil(t, l.Validate())
}

func TestTrackerDepth(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxDepth = 3
	tr := NewResourceTracker(limits)

	pos := StartPosition()
	for d := 1; d <= 3; d++ {
		assert.NoError(t, tr.CheckDepth(pos, d))
	}
	err := tr.CheckDepth(pos, 4)
	assert.NotNil(t, err)
	var lim *LimitExceededError
	assert.ErrorAs(t, err, &lim)
	assert.Equal(t, "nesting depth", lim.Resource)

	// The failed check is still recorded in the high-water mark.
	assert.Equal(t, 4, tr.Stats().MaxDepth)
}

func TestTrackerAnchors(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxAnchors = 2
	tr := NewResourceTracker(limits)

	pos := StartPosition()
	assert.NoError(t, tr.AddAnchor(pos))
	assert.NoError(t, tr.AddAnchor(pos))
	err := tr.AddAnchor(pos)
	var lim *LimitExceededError
	assert.ErrorAs(t, err, &lim)
	assert.Equal(t, "anchors", lim.Resource)
}

func TestTrackerBytes(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxDocumentSize = 10
	tr := NewResourceTracker(limits)

	pos := StartPosition()
	assert.NoError(t, tr.AddBytes(pos, 6))
	assert.NoError(t, tr.AddBytes(pos, 4))
	err := tr.AddBytes(pos, 1)
	var lim *LimitExceededError
	assert.ErrorAs(t, err, &lim)
	assert.Equal(t, "document size", lim.Resource)
}

func TestTrackerStringLength(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxStringLength = 5
	tr := NewResourceTracker(limits)

	pos := StartPosition()
	assert.NoError(t, tr.CheckStringLength(pos, 5))
	// Length checks do not accumulate.
	assert.NoError(t, tr.CheckStringLength(pos, 5))
	err := tr.CheckStringLength(pos, 6)
	var lim *LimitExceededError
	assert.ErrorAs(t, err, &lim)
	assert.Equal(t, "string length", lim.Resource)
}

func TestTrackerAliasDepth(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxAliasDepth = 2
	tr := NewResourceTracker(limits)

	pos := StartPosition()
	assert.NoError(t, tr.EnterAlias(pos))
	assert.NoError(t, tr.EnterAlias(pos))
	assert.Equal(t, 2, tr.AliasDepth())

	// The failing Enter must not push.
	err := tr.EnterAlias(pos)
	var lim *LimitExceededError
	assert.ErrorAs(t, err, &lim)
	assert.Equal(t, "alias depth", lim.Resource)
	assert.Equal(t, 2, tr.AliasDepth())

	tr.ExitAlias()
	assert.Equal(t, 1, tr.AliasDepth())
	assert.NoError(t, tr.EnterAlias(pos))
}

func TestTrackerComplexityAndItems(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxComplexityScore = 10
	limits.MaxCollectionSize = 3
	tr := NewResourceTracker(limits)

	pos := StartPosition()
	assert.NoError(t, tr.AddComplexity(pos, 10))
	err := tr.AddComplexity(pos, 1)
	var lim *LimitExceededError
	assert.ErrorAs(t, err, &lim)
	assert.Equal(t, "complexity", lim.Resource)

	for i := 0; i < 3; i++ {
		assert.NoError(t, tr.AddCollectionItem(pos))
	}
	err = tr.AddCollectionItem(pos)
	assert.ErrorAs(t, err, &lim)
	assert.Equal(t, "collection size", lim.Resource)
}

func TestTrackerDeadline(t *testing.T) {
	limits := DefaultLimits()
	limits.Timeout = time.Nanosecond
	tr := NewResourceTracker(limits)

	time.Sleep(time.Millisecond)
	err := tr.CheckDeadline(StartPosition())
	var lim *LimitExceededError
	assert.ErrorAs(t, err, &lim)
	assert.Equal(t, "time", lim.Resource)

	// No timeout configured means no deadline at all.
	tr = NewResourceTracker(DefaultLimits())
	assert.NoError(t, tr.CheckDeadline(StartPosition()))
}

func TestTrackerReset(t *testing.T) {
	tr := NewResourceTracker(DefaultLimits())
	pos := StartPosition()
	assert.NoError(t, tr.CheckDepth(pos, 7))
	assert.NoError(t, tr.AddAnchor(pos))
	assert.NoError(t, tr.AddBytes(pos, 100))
	assert.NoError(t, tr.AddComplexity(pos, 5))
	assert.NoError(t, tr.AddCollectionItem(pos))

	tr.Reset()
	assert.DeepEqual(t, ResourceStats{}, tr.Stats())
	assert.Equal(t, DefaultLimits(), tr.Limits())
}

func TestTrackerResetDocument(t *testing.T) {
	tr := NewResourceTracker(DefaultLimits())
	pos := StartPosition()
	assert.NoError(t, tr.AddBytes(pos, 100))
	assert.NoError(t, tr.CheckDepth(pos, 7))
	assert.NoError(t, tr.AddAnchor(pos))
	assert.NoError(t, tr.AddComplexity(pos, 5))
	assert.NoError(t, tr.AddCollectionItem(pos))

	// Bytes are a stream-level budget and survive the document reset.
	tr.ResetDocument()
	assert.DeepEqual(t, ResourceStats{BytesProcessed: 100}, tr.Stats())
}

func TestResourceStatsString(t *testing.T) {
	s := ResourceStats{
		MaxDepth:        3,
		AnchorCount:     2,
		BytesProcessed:  2048,
		ComplexityScore: 1234,
		CollectionItems: 10,
	}
	assert.Equal(t, "depth=3 anchors=2 bytes=2.0 kB complexity=1,234 items=10", s.String())
}

func TestLimitExceededErrorMessage(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxDepth = 2
	tr := NewResourceTracker(limits)
	err := tr.CheckDepth(Position{Line: 3, Column: 5, Offset: 20}, 3)
	assert.ErrorMatches(t, `yaml: limit exceeded at line 3, column 5: nesting depth: maximum depth 2 exceeded`, err)
}
