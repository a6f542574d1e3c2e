// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package heap

// Heap owns the cell arena, the free list, the arena protect-stack, the
// process-wide global tables (symbol table, globals, macros, features,
// libraries, parameters), and the permanent root set (interned syntax
// keywords and built-in procedures). A Heap is not safe for concurrent use.
type Heap struct {
	// Cell arena / free list (alloc.go).
	meta       []cellMeta
	objects    []Object
	freep      uint32
	pageUnits  uint32
	pages      []pageRange
	totalUnits uint32
	usedUnits  uint32

	// Arena protect-stack: every object returned by Alloc is pushed here so
	// it survives a collection before the interpreter links it into any
	// other root. ArenaPreserve/ArenaRestore bound its lifetime.
	arena []Object

	// Process-wide global tables, all themselves GC roots.
	symtab     map[string]*Symbol
	globals    *Weak
	macros     *Dict
	features   []Value
	libraries  *Dict
	parameters *Dict

	// permanents holds interned syntax keywords and built-in primitive
	// procedures: objects that must never be collected regardless of
	// whether the running program still references them.
	permanents []Object

	// CurrentError is the condition object currently being handled, if any;
	// traced as a root so a handler can still observe it mid-unwind.
	CurrentError Value

	pendingWeak []*Weak
	gcCount     int
}

// RootSource is implemented by components outside package heap (the
// bytecode VM's call-info/operand stack, the exception handler stack, the
// dynamic-wind checkpoint chain) that hold their own live Values the
// collector must trace as roots.
type RootSource interface {
	GCRoots(mark func(Value))
}

// Globals returns the weak map used for the top-level variable namespace,
// allocating it on first use.
func (h *Heap) Globals() *Weak {
	if h.globals == nil {
		h.globals = h.NewWeak()
	}
	return h.globals
}

// Macros returns the dictionary used for the top-level syntax namespace,
// allocating it on first use.
func (h *Heap) Macros() *Dict {
	if h.macros == nil {
		h.macros = h.NewDict()
	}
	return h.macros
}

// Libraries returns the dictionary of loaded library environments,
// allocating it on first use.
func (h *Heap) Libraries() *Dict {
	if h.libraries == nil {
		h.libraries = h.NewDict()
	}
	return h.libraries
}

// Parameters returns the dictionary backing parameter objects (make-
// parameter / parameterize), allocating it on first use.
func (h *Heap) Parameters() *Dict {
	if h.parameters == nil {
		h.parameters = h.NewDict()
	}
	return h.parameters
}

// AddFeature registers v (expected to be a Symbol Value) in the
// feature-identifiers list queried by cond-expand.
func (h *Heap) AddFeature(v Value) { h.features = append(h.features, v) }

// Permanent registers obj as a permanent root: it is always marked live by
// Collect regardless of whether anything else references it. Used for
// interned syntax keywords and built-in primitive procedures at startup.
func (h *Heap) Permanent(obj Object) { h.permanents = append(h.permanents, obj) }

// ArenaPreserve returns a mark representing the arena's current length, to
// be passed to ArenaRestore once the objects allocated since are safely
// linked into some other root (or are no longer needed).
func (h *Heap) ArenaPreserve() int { return len(h.arena) }

// ArenaRestore truncates the arena back to a mark previously obtained from
// ArenaPreserve, releasing the arena's hold on everything allocated since.
func (h *Heap) ArenaRestore(mark int) {
	h.arena = h.arena[:mark]
}

// AllocUnsafe is like Alloc but does not push the new object onto the arena
// protect-stack. Used for allocations the caller will immediately link into
// a root itself (e.g. consing onto a register already being traced), where
// paying for an arena entry would be pure overhead.
func (h *Heap) AllocUnsafe(tag ObjTag, units uint32, build func(*Header) Object) Object {
	return h.allocCore(tag, units, build)
}
