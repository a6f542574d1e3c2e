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

// Package rope implements immutable byte sequences as a shared DAG of
// chunks and concat/slice nodes, the backing representation for STRING heap
// objects (see package heap).
//
// A Rope is either a leaf (an owning reference to a Chunk with an offset and
// weight) or an internal node with two owning subrope references. Chunks are
// refcounted independently of the mark-sweep heap, since a chunk may be
// shared by rope leaves that belong to unrelated STRING objects with no
// parent/child relationship in the GC's object graph.
package rope

import "fmt"

// Chunk owns a byte buffer shared by one or more rope leaves.
type Chunk struct {
	buf      []byte
	refcount int
}

func newChunk(buf []byte) *Chunk {
	return &Chunk{buf: buf, refcount: 1}
}

func (c *Chunk) incref() { c.refcount++ }

// decref drops a reference; the chunk is not reclaimed by any explicit call,
// but once refcount reaches zero nothing may legally read c.buf again —
// mirrors the C chunk's manual free on refcount 0, with Go's collector doing
// the actual reclamation once the last Go-level reference is dropped too.
func (c *Chunk) decref() {
	c.refcount--
	if c.refcount < 0 {
		panic("rope: chunk refcount underflow")
	}
}

// Refcount reports the chunk's current reference count, exposed for tests
// that verify the "chunks are reclaimed iff refcount reaches zero" invariant.
func (c *Chunk) Refcount() int { return c.refcount }

// Rope is an immutable byte sequence: either a leaf view into a Chunk or an
// internal concat node over two subropes. The zero value is not valid; use
// Make, Concat, or Slice.
type Rope struct {
	weight int

	// Leaf fields.
	chunk  *Chunk
	offset int

	// Internal node fields (chunk == nil).
	left, right *Rope
}

// Weight returns the number of visible bytes in r.
func (r *Rope) Weight() int {
	if r == nil {
		return 0
	}
	return r.weight
}

func (r *Rope) isLeaf() bool { return r.chunk != nil }

// Make allocates a fresh chunk holding a copy of data and wraps it in a leaf
// rope covering the whole chunk. The chunk's backing buffer carries one
// extra trailing NUL byte so CString can return it directly with no copy.
func Make(data []byte) *Rope {
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	return &Rope{chunk: newChunk(buf), offset: 0, weight: len(data)}
}

// leafOf builds a new leaf that shares chunk c over [offset, offset+weight).
func leafOf(c *Chunk, offset, weight int) *Rope {
	c.incref()
	return &Rope{chunk: c, offset: offset, weight: weight}
}

// Concat returns a rope representing x followed by y in O(1) time. Both
// operands' ownership is shared (refcounts bumped), not moved.
func Concat(x, y *Rope) *Rope {
	if x.Weight() == 0 {
		return y
	}
	if y.Weight() == 0 {
		return x
	}
	return &Rope{left: retain(x), right: retain(y), weight: x.Weight() + y.Weight()}
}

// retain returns a rope referencing the same underlying storage as r, with
// chunk refcounts bumped for leaves (internal nodes need no bump: they don't
// own a chunk directly).
func retain(r *Rope) *Rope {
	if r.isLeaf() {
		return leafOf(r.chunk, r.offset, r.weight)
	}
	return r
}

// Slice returns the byte range [i, j) of x. Requires 0 <= i <= j <= x.Weight().
func Slice(x *Rope, i, j int) (*Rope, error) {
	if i < 0 || j < i || j > x.Weight() {
		return nil, fmt.Errorf("rope: slice [%d, %d) out of range for weight %d", i, j, x.Weight())
	}
	if i == 0 && j == x.Weight() {
		return retain(x), nil
	}
	if x.isLeaf() {
		return leafOf(x.chunk, x.offset+i, j-i), nil
	}
	lw := x.left.Weight()
	switch {
	case j <= lw:
		return Slice(x.left, i, j)
	case i >= lw:
		return Slice(x.right, i-lw, j-lw)
	default:
		left, err := Slice(x.left, i, lw)
		if err != nil {
			return nil, err
		}
		right, err := Slice(x.right, 0, j-lw)
		if err != nil {
			return nil, err
		}
		return Concat(left, right), nil
	}
}

// At returns the byte at visible index i (0 <= i < x.Weight()).
func At(x *Rope, i int) (byte, error) {
	if i < 0 || i >= x.Weight() {
		return 0, fmt.Errorf("rope: index %d out of range for weight %d", i, x.Weight())
	}
	for {
		if x.isLeaf() {
			return x.chunk.buf[x.offset+i], nil
		}
		if i < x.left.Weight() {
			x = x.left
		} else {
			i -= x.left.Weight()
			x = x.right
		}
	}
}

// Bytes materializes the visible bytes of x into a fresh slice, without
// mutating x. Used by callers (string->list, display) that need a flattened
// view but should not pay for CString's flatten-in-place caching.
func Bytes(x *Rope) []byte {
	out := make([]byte, x.Weight())
	flattenInto(x, out)
	return out
}

func flattenInto(x *Rope, dst []byte) {
	if x.Weight() == 0 {
		return
	}
	if x.isLeaf() {
		copy(dst, x.chunk.buf[x.offset:x.offset+x.weight])
		return
	}
	flattenInto(x.left, dst[:x.left.weight])
	flattenInto(x.right, dst[x.left.weight:])
}

// CString returns a NUL-terminated view of x's bytes suitable for a
// C-string-style embedding call.
//
// If x is already a leaf covering its whole backing chunk, the chunk's
// buffer (which is allocated with one extra trailing zero byte) is returned
// with no copy, resliced to x's weight so the NUL lies just past the end of
// the returned slice. Otherwise x is flattened into a fresh chunk and the
// internal nodes that made up x are collapsed in place into a single leaf
// over that chunk, so that a second CString call on the same *Rope is O(1).
// This mutation is safe because the visible bytes are unchanged — only the
// internal representation is cached.
func CString(x *Rope) []byte {
	if x.isLeaf() && x.offset == 0 && x.weight == len(x.chunk.buf)-1 {
		return x.chunk.buf[:x.weight]
	}
	buf := make([]byte, x.weight+1) // +1 for the implicit NUL terminator
	flattenInto(x, buf[:x.weight])
	newChunkObj := newChunk(buf)

	// Retarget x in place to be a leaf over the new chunk. Any existing
	// chunk reference this rope held is released first.
	if x.isLeaf() {
		x.chunk.decref()
	} else {
		releaseNode(x)
	}
	x.chunk = newChunkObj
	x.offset = 0
	x.left, x.right = nil, nil
	return buf[:x.weight]
}

// releaseNode drops this internal node's references to its subropes,
// recursively decref-ing every leaf chunk reachable underneath — the subtree
// is being discarded whole, so every owning reference it held must be given
// up, not just the immediate children's.
func releaseNode(x *Rope) {
	Release(x.left)
	Release(x.right)
}

// Release drops r's ownership of whatever chunks it (transitively) leafs
// into. Called when a rope is discarded outright, e.g. by CString when it
// retargets a rope to a freshly flattened chunk, and by the STRING heap
// object's sweep-time finalizer.
func Release(r *Rope) {
	if r == nil {
		return
	}
	if r.isLeaf() {
		r.chunk.decref()
		return
	}
	Release(r.left)
	Release(r.right)
}

// Equal reports whether x and y represent the same byte sequence.
func Equal(x, y *Rope) bool {
	if x.Weight() != y.Weight() {
		return false
	}
	for i := 0; i < x.Weight(); i++ {
		a, _ := At(x, i)
		b, _ := At(y, i)
		if a != b {
			return false
		}
	}
	return true
}
