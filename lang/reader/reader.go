// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package reader implements the S-expression reader: a character-driven
// dispatch table over a byte stream that produces heap.Values, with read
// macros for quote forms, vectors, bytevectors, characters, strings,
// pipe-quoted symbols, and datum labels for shared or cyclic structure.
//
// Characters are single bytes, matching spec.md's Non-goals (no full
// Unicode); the reader operates directly on a bufio.Reader rather than a
// rune stream.
package reader

import (
	"bufio"
	"bytes"
	"io"

	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/token"
)

// Reader reads successive top-level datums from an underlying byte stream.
// A Reader is not safe for concurrent use.
type Reader struct {
	src  *bufio.Reader
	file string
	pos  token.Position

	// foldCase persists across reads once set by a #!fold-case or
	// #!no-fold-case directive, per read.c's pic->reader.typecase: it is
	// reader state, not a one-shot toggle for the next symbol only.
	foldCase bool

	// labels is the datum-label scope for the in-progress top-level read.
	// It is reset at the start of every New call to Read, since R7RS datum
	// labels are only valid within the single datum they were introduced
	// in.
	labels map[int]*labelSlot
}

// New creates a Reader over r. file is used only to annotate error
// positions (pass "" for an anonymous input).
func New(r io.Reader, file string) *Reader {
	return &Reader{
		src:  bufio.NewReader(r),
		file: file,
		pos:  token.Position{File: file, Line: 1, Column: 1},
	}
}

// NewFromBytes is a convenience constructor over an in-memory buffer, the
// shape most native procedures and the REPL use (read-cstr style entry
// points, see cmd/ilisp).
func NewFromBytes(data []byte, file string) *Reader {
	return New(bytes.NewReader(data), file)
}

// Position reports the reader's current location, for callers that want to
// report a position without triggering a read (e.g. the REPL prompt).
func (r *Reader) Position() token.Position { return r.pos }

// Read parses and returns the next top-level datum, or the EOF marker Value
// if the stream is exhausted before any non-atmosphere character is seen.
// All failures are returned as *SyntaxError.
func (r *Reader) Read(h *heap.Heap) (heap.Value, error) {
	r.labels = make(map[int]*labelSlot)
	v, err := r.readDatum(h)
	if err != nil {
		return heap.Value{}, err
	}
	return v, nil
}

func (r *Reader) advancePos(c byte) {
	r.pos.Offset++
	if c == '\n' {
		r.pos.Line++
		r.pos.Column = 1
	} else {
		r.pos.Column++
	}
}

// readByte returns the next byte, or io.EOF.
func (r *Reader) readByte() (byte, error) {
	c, err := r.src.ReadByte()
	if err != nil {
		return 0, err
	}
	r.advancePos(c)
	return c, nil
}

// unreadByte pushes back the single most recently read byte. Position
// bookkeeping is approximate for the pushed-back byte (it is never observed
// again before being re-read), matching bufio.Reader's own single-byte
// pushback limit.
func (r *Reader) unreadByte() {
	_ = r.src.UnreadByte()
	r.pos.Offset--
	if r.pos.Column > 1 {
		r.pos.Column--
	}
}

// peekByte returns the next byte without consuming it, and false at EOF.
func (r *Reader) peekByte() (byte, bool) {
	b, err := r.src.Peek(1)
	if err != nil {
		return 0, false
	}
	return b[0], true
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', ';', '"', '|':
		return true
	}
	return isSpace(c)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// foldByte lowercases c if the reader's fold-case mode is active.
func (r *Reader) foldByte(c byte) byte {
	if r.foldCase && c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

func (r *Reader) fold(s []byte) []byte {
	if !r.foldCase {
		return s
	}
	out := make([]byte, len(s))
	for i, c := range s {
		out[i] = r.foldByte(c)
	}
	return out
}

// readToken reads a maximal run of non-delimiter bytes, used for numbers,
// bare symbols, and the text following '#' in #t/#true/#f/#false/#!directive
// tokens. The terminating delimiter (or EOF) is left unconsumed.
func (r *Reader) readToken() ([]byte, error) {
	var buf []byte
	for {
		c, ok := r.peekByte()
		if !ok || isDelimiter(c) {
			return buf, nil
		}
		c, err := r.readByte()
		if err != nil {
			return buf, nil
		}
		buf = append(buf, c)
	}
}
