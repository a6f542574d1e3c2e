// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.

// Package token carries source positions through the reader and into error
// objects, so a raised read error can report where in the input it occurred.
package token

import "fmt"

// Position locates a single byte in a named input stream.
type Position struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset
}

// String renders a position as "file:line:col", matching the lexer's own
// position formatting convention.
func (p Position) String() string {
	file := p.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Column)
}

// IsZero reports whether p is the unset zero value.
func (p Position) IsZero() bool {
	return p == Position{}
}
