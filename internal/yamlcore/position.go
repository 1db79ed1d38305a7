// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package yamlcore

import "fmt"

// Position locates a point in the source text. Line and Column are 1-based,
// Offset is the 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

// StartPosition returns the position of the first byte of a document.
func StartPosition() Position {
	return Position{Line: 1, Column: 1, Offset: 0}
}

// Advance moves the position past r, which occupies size bytes in the
// source. A newline resets the column and bumps the line.
func (p Position) Advance(r rune, size int) Position {
	p.Offset += size
	if r == '\n' {
		p.Line++
		p.Column = 1
	} else {
		p.Column++
	}
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}
