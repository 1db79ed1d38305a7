// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Resource limits and usage tracking for safe processing of untrusted
// documents.

package yamlcore

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Limits is an immutable set of resource ceilings applied while a document
// is processed. The zero value is not usable; start from one of the
// presets.
type Limits struct {
	MaxDepth           int
	MaxAnchors         int
	MaxDocumentSize    int
	MaxStringLength    int
	MaxAliasDepth      int
	MaxCollectionSize  int
	MaxComplexityScore int

	// Timeout bounds the wall-clock time spent composing a single
	// document. Zero means no deadline.
	Timeout time.Duration
}

// DefaultLimits suits untrusted input of ordinary size.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:           1000,
		MaxAnchors:         10_000,
		MaxDocumentSize:    100 * 1024 * 1024,
		MaxStringLength:    10 * 1024 * 1024,
		MaxAliasDepth:      100,
		MaxCollectionSize:  1_000_000,
		MaxComplexityScore: 1_000_000,
	}
}

// StrictLimits suits small configuration files from hostile sources.
func StrictLimits() Limits {
	return Limits{
		MaxDepth:           50,
		MaxAnchors:         100,
		MaxDocumentSize:    1024 * 1024,
		MaxStringLength:    64 * 1024,
		MaxAliasDepth:      5,
		MaxCollectionSize:  10_000,
		MaxComplexityScore: 10_000,
		Timeout:            5 * time.Second,
	}
}

// PermissiveLimits suits large trusted documents.
func PermissiveLimits() Limits {
	return Limits{
		MaxDepth:           10_000,
		MaxAnchors:         100_000,
		MaxDocumentSize:    1024 * 1024 * 1024,
		MaxStringLength:    100 * 1024 * 1024,
		MaxAliasDepth:      1000,
		MaxCollectionSize:  10_000_000,
		MaxComplexityScore: 100_000_000,
	}
}

// UnlimitedLimits disables every ceiling. Use with caution.
func UnlimitedLimits() Limits {
	return Limits{
		MaxDepth:           math.MaxInt,
		MaxAnchors:         math.MaxInt,
		MaxDocumentSize:    math.MaxInt,
		MaxStringLength:    math.MaxInt,
		MaxAliasDepth:      math.MaxInt,
		MaxCollectionSize:  math.MaxInt,
		MaxComplexityScore: math.MaxInt,
	}
}

// Validate rejects configurations with non-positive ceilings.
func (l Limits) Validate() error {
	if l.MaxDepth <= 0 || l.MaxAnchors <= 0 || l.MaxDocumentSize <= 0 ||
		l.MaxStringLength <= 0 || l.MaxAliasDepth <= 0 ||
		l.MaxCollectionSize <= 0 || l.MaxComplexityScore <= 0 {
		return &ConfigError{Msg: "limits must all be positive"}
	}
	if l.Timeout < 0 {
		return &ConfigError{Msg: "timeout must not be negative"}
	}
	return nil
}

// ResourceStats is a point-in-time snapshot of a tracker's counters.
type ResourceStats struct {
	MaxDepth        int
	AnchorCount     int
	BytesProcessed  int
	ComplexityScore int
	CollectionItems int
}

func (s ResourceStats) String() string {
	return fmt.Sprintf("depth=%d anchors=%d bytes=%s complexity=%s items=%s",
		s.MaxDepth, s.AnchorCount,
		humanize.Bytes(uint64(s.BytesProcessed)),
		humanize.Comma(int64(s.ComplexityScore)),
		humanize.Comma(int64(s.CollectionItems)))
}

// ResourceTracker accumulates resource usage for one document and fails
// closed the instant any ceiling in its Limits is crossed. It carries no
// policy of its own.
type ResourceTracker struct {
	limits Limits

	currentDepth    int
	maxDepthSeen    int
	anchorCount     int
	bytesProcessed  int
	aliasDepth      int
	complexityScore int
	collectionItems int

	deadline time.Time
}

func NewResourceTracker(limits Limits) *ResourceTracker {
	t := &ResourceTracker{limits: limits}
	t.armDeadline()
	return t
}

func (t *ResourceTracker) armDeadline() {
	if t.limits.Timeout > 0 {
		t.deadline = time.Now().Add(t.limits.Timeout)
	} else {
		t.deadline = time.Time{}
	}
}

// Limits returns the ceilings this tracker enforces.
func (t *ResourceTracker) Limits() Limits {
	return t.limits
}

// CheckDepth records the current nesting depth and fails once it passes
// MaxDepth.
func (t *ResourceTracker) CheckDepth(pos Position, depth int) error {
	t.currentDepth = depth
	if depth > t.maxDepthSeen {
		t.maxDepthSeen = depth
	}
	if depth > t.limits.MaxDepth {
		return &LimitExceededError{
			Pos:      pos,
			Resource: "nesting depth",
			Msg:      fmt.Sprintf("maximum depth %s exceeded", humanize.Comma(int64(t.limits.MaxDepth))),
		}
	}
	return nil
}

// AddAnchor counts one anchor definition.
func (t *ResourceTracker) AddAnchor(pos Position) error {
	t.anchorCount++
	if t.anchorCount > t.limits.MaxAnchors {
		return &LimitExceededError{
			Pos:      pos,
			Resource: "anchors",
			Msg:      fmt.Sprintf("maximum anchor count %s exceeded", humanize.Comma(int64(t.limits.MaxAnchors))),
		}
	}
	return nil
}

// AddBytes counts input bytes against MaxDocumentSize.
func (t *ResourceTracker) AddBytes(pos Position, n int) error {
	t.bytesProcessed += n
	if t.bytesProcessed > t.limits.MaxDocumentSize {
		return &LimitExceededError{
			Pos:      pos,
			Resource: "document size",
			Msg:      fmt.Sprintf("maximum document size %s exceeded", humanize.Bytes(uint64(t.limits.MaxDocumentSize))),
		}
	}
	return nil
}

// CheckStringLength rejects a scalar longer than MaxStringLength. It does
// not accumulate.
func (t *ResourceTracker) CheckStringLength(pos Position, length int) error {
	if length > t.limits.MaxStringLength {
		return &LimitExceededError{
			Pos:      pos,
			Resource: "string length",
			Msg:      fmt.Sprintf("maximum string length %s exceeded", humanize.Bytes(uint64(t.limits.MaxStringLength))),
		}
	}
	return nil
}

// EnterAlias pushes one level of alias expansion, failing before the push
// when the stack is already full.
func (t *ResourceTracker) EnterAlias(pos Position) error {
	if t.aliasDepth+1 > t.limits.MaxAliasDepth {
		return &LimitExceededError{
			Pos:      pos,
			Resource: "alias depth",
			Msg:      fmt.Sprintf("maximum alias depth %d exceeded", t.limits.MaxAliasDepth),
		}
	}
	t.aliasDepth++
	return nil
}

// ExitAlias pops one level of alias expansion.
func (t *ResourceTracker) ExitAlias() {
	if t.aliasDepth > 0 {
		t.aliasDepth--
	}
}

// AliasDepth reports the current expansion depth.
func (t *ResourceTracker) AliasDepth() int {
	return t.aliasDepth
}

// AddCollectionItem counts one sequence item or mapping pair.
func (t *ResourceTracker) AddCollectionItem(pos Position) error {
	t.collectionItems++
	if t.collectionItems > t.limits.MaxCollectionSize {
		return &LimitExceededError{
			Pos:      pos,
			Resource: "collection size",
			Msg:      fmt.Sprintf("maximum collection size %s exceeded", humanize.Comma(int64(t.limits.MaxCollectionSize))),
		}
	}
	return nil
}

// AddComplexity charges score points against MaxComplexityScore.
func (t *ResourceTracker) AddComplexity(pos Position, score int) error {
	t.complexityScore += score
	if t.complexityScore > t.limits.MaxComplexityScore {
		return &LimitExceededError{
			Pos:      pos,
			Resource: "complexity",
			Msg:      fmt.Sprintf("maximum complexity score %s exceeded", humanize.Comma(int64(t.limits.MaxComplexityScore))),
		}
	}
	return nil
}

// CheckDeadline fails once the configured timeout has elapsed.
func (t *ResourceTracker) CheckDeadline(pos Position) error {
	if !t.deadline.IsZero() && time.Now().After(t.deadline) {
		return &LimitExceededError{
			Pos:      pos,
			Resource: "time",
			Msg:      fmt.Sprintf("timeout of %s exceeded", t.limits.Timeout),
		}
	}
	return nil
}

// Reset clears all counters and re-arms the deadline.
func (t *ResourceTracker) Reset() {
	limits := t.limits
	*t = ResourceTracker{limits: limits}
	t.armDeadline()
}

// ResetDocument clears the per-document counters ahead of the next
// document. The byte count is a stream-level budget, charged once when
// the input is handed to the scanner, and survives document boundaries.
func (t *ResourceTracker) ResetDocument() {
	limits := t.limits
	bytes := t.bytesProcessed
	*t = ResourceTracker{limits: limits, bytesProcessed: bytes}
	t.armDeadline()
}

// Stats snapshots the counters.
func (t *ResourceTracker) Stats() ResourceStats {
	return ResourceStats{
		MaxDepth:        t.maxDepthSeen,
		AnchorCount:     t.anchorCount,
		BytesProcessed:  t.bytesProcessed,
		ComplexityScore: t.complexityScore,
		CollectionItems: t.collectionItems,
	}
}
