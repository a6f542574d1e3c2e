// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package heap

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is returned (and, at the top-level Alloc entry point,
// eventually panics) when the heap cannot satisfy an allocation even after
// growing and collecting.
var ErrOutOfMemory = errors.New("heap: out of memory")

var errNoSpace = errors.New("heap: no free block large enough")

// cellMeta is the free-list bookkeeping for one head-of-block cell. Both
// free and allocated blocks record their size here; free blocks additionally
// chain through next in address order, exactly mirroring the reference
// allocator's boundary-tag free list.
type cellMeta struct {
	free bool
	size uint32 // in cells; valid at every block's head cell
	next uint32 // valid only while free: index of the next free block
}

type pageRange struct {
	base, end uint32
}

// defaultPageUnits is the number of cells requested from growPage each time
// the heap needs more address space. Kept small so tests can exercise page
// growth without allocating megabytes.
const defaultPageUnits = 4096

// Open creates a Heap with an empty cell arena. Cells are addressed from 1;
// cell 0 is the permanent free-list sentinel, mirroring the reference
// allocator's base header.
func Open() *Heap {
	h := &Heap{
		meta:      []cellMeta{{free: true, size: 0, next: 0}},
		objects:   []Object{nil},
		freep:     0,
		pageUnits: defaultPageUnits,
		symtab:    make(map[string]*Symbol),
	}
	return h
}

// growPage extends the cell arena by one page and folds the new space into
// the free list. The page's first cell is reserved as a zero-size filler,
// echoing the reference allocator's own reserved base unit; it is otherwise
// functionally inert since allocCells never satisfies a request from a
// zero-size block.
func (h *Heap) growPage() {
	base := uint32(len(h.meta))
	n := h.pageUnits
	h.meta = append(h.meta, make([]cellMeta, n)...)
	h.objects = append(h.objects, make([]Object, n)...)
	h.pages = append(h.pages, pageRange{base: base, end: base + n})
	h.totalUnits += n

	h.meta[base] = cellMeta{size: 0}
	h.freeCells(base)

	if n > 1 {
		np := base + 1
		h.meta[np] = cellMeta{size: n - 1}
		// freeCells subtracts the block's size from usedUnits; count the new
		// block as used first so occupancy is unchanged by the page growth.
		h.usedUnits += n - 1
		h.freeCells(np)
	}
}

// allocCells finds the first free block of at least n cells, address-order
// scanning from the last block freed or allocated (freep), splitting the
// block if it's larger than needed. Returns errNoSpace if the free list has
// no block big enough, in which case the caller should grow the heap and
// retry.
func (h *Heap) allocCells(n uint32) (uint32, error) {
	if n == 0 {
		n = 1
	}
	prev := h.freep
	p := h.meta[prev].next
	for {
		if h.meta[p].size >= n {
			if h.meta[p].size == n {
				h.meta[prev].next = h.meta[p].next
			} else {
				h.meta[p].size -= n
				tail := p + h.meta[p].size
				h.meta[tail] = cellMeta{size: n}
				p = tail
			}
			h.meta[p].free = false
			h.meta[p].size = n
			h.freep = prev
			h.usedUnits += n
			return p, nil
		}
		if p == h.freep {
			return 0, errNoSpace
		}
		prev = p
		p = h.meta[p].next
	}
}

// freeCells returns the block headed at id (whose size must already be set
// in h.meta[id].size) to the free list, coalescing with whichever of its
// address-order neighbors are themselves free. This is a direct translation
// of the reference allocator's heap_free.
func (h *Heap) freeCells(id uint32) {
	sz := h.meta[id].size
	h.usedUnits -= sz

	p := h.freep
	for !(id > p && id < h.meta[p].next) {
		if p >= h.meta[p].next && (id > p || id < h.meta[p].next) {
			break
		}
		p = h.meta[p].next
	}

	nxt := h.meta[p].next
	if id+sz == nxt && h.meta[nxt].size > 0 {
		h.meta[id].size = sz + h.meta[nxt].size
		h.meta[id].next = h.meta[nxt].next
	} else {
		h.meta[id].next = nxt
	}
	h.meta[id].free = true

	if p+h.meta[p].size == id && h.meta[id].size > 0 {
		h.meta[p].size += h.meta[id].size
		h.meta[p].next = h.meta[id].next
	} else {
		h.meta[p].next = id
	}
	h.freep = p
}

// Alloc reserves units cells tagged tag, builds the concrete Object via
// build, registers it in the arena (so it survives a collection that
// happens to run before the interpreter has linked it into any other root),
// and returns it.
//
// On allocation failure it grows the heap and retries; if that still fails
// it runs a collection and retries once more; if that still fails it grows
// the heap a second time and retries a final time. A request that cannot be
// satisfied after all of that means the heap is genuinely exhausted, and
// Alloc panics rather than returning a half-initialized object, matching
// the reference allocator's fatal "cannot allocate memory" abort.
func (h *Heap) Alloc(tag ObjTag, units uint32, build func(*Header) Object) Object {
	obj := h.allocCore(tag, units, build)
	h.arena = append(h.arena, obj)
	return obj
}

// allocCore does the actual cell reservation and object construction shared
// by Alloc and AllocUnsafe, without touching the arena.
func (h *Heap) allocCore(tag ObjTag, units uint32, build func(*Header) Object) Object {
	if units == 0 {
		units = 1
	}
	id, err := h.allocCells(units)
	if err != nil {
		h.growPage()
		id, err = h.allocCells(units)
	}
	if err != nil {
		h.Collect()
		id, err = h.allocCells(units)
	}
	if err != nil {
		h.growPage()
		id, err = h.allocCells(units)
	}
	if err != nil {
		panic(fmt.Errorf("%w: could not satisfy %d-cell allocation for %s", ErrOutOfMemory, units, tag))
	}

	hdr := &Header{tag: tag, id: id, units: units}
	obj := build(hdr)
	h.objects[id] = obj
	return obj
}

// freeObject releases the cells backing obj back to the free list. Called
// only from sweep, after the object's own finalizer has run.
func (h *Heap) freeObject(obj Object) {
	hdr := obj.Header()
	h.objects[hdr.id] = nil
	h.freeCells(hdr.id)
}

// Stats reports coarse occupancy for diagnostics and the page-growth
// heuristic.
type Stats struct {
	TotalUnits uint32
	UsedUnits  uint32
	Pages      int
	GCCount    int
}

// Stats returns a snapshot of the heap's current occupancy.
func (h *Heap) Stats() Stats {
	return Stats{TotalUnits: h.totalUnits, UsedUnits: h.usedUnits, Pages: len(h.pages), GCCount: h.gcCount}
}
