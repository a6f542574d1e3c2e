// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package heap

import "github.com/probechain/ilisp/lang/rope"

// Collect runs a full mark-sweep cycle. sources contributes the roots that
// live outside package heap: the VM's operand stack and call-info/context
// chain, the exception handler stack, and the dynamic-wind checkpoint chain
// all implement RootSource.
//
// Marking is iterative (an explicit worklist, not native recursion), so
// tracing a long list or a deep closure chain cannot overflow the Go stack
// the way a naive recursive marker would.
func (h *Heap) Collect(sources ...RootSource) {
	h.gcCount++
	h.pendingWeak = h.pendingWeak[:0]

	mark := func(v Value) {
		if v.IsObject() {
			h.markObj(v.Obj())
		}
	}

	for _, o := range h.permanents {
		h.markObj(o)
	}
	for _, o := range h.arena {
		h.markObj(o)
	}
	if h.globals != nil {
		h.markObj(h.globals)
	}
	if h.macros != nil {
		h.markObj(h.macros)
	}
	if h.libraries != nil {
		h.markObj(h.libraries)
	}
	if h.parameters != nil {
		h.markObj(h.parameters)
	}
	for _, v := range h.features {
		mark(v)
	}
	mark(h.CurrentError)

	for _, s := range sources {
		s.GCRoots(mark)
	}

	h.resolveWeakFixpoint()
	h.sweep()
}

// isMarkedObj reports whether obj's mark bit is currently set.
func isMarkedObj(obj Object) bool {
	if obj == nil {
		return true
	}
	return obj.Header().mark
}

// markObj marks obj and everything reachable from it, using an explicit
// stack instead of recursion.
func (h *Heap) markObj(obj Object) {
	if obj == nil {
		return
	}
	stack := []Object{obj}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if cur == nil {
			continue
		}
		hdr := cur.Header()
		if hdr.mark {
			continue
		}
		hdr.mark = true

		pushVal := func(v Value) {
			if v.IsObject() {
				stack = append(stack, v.Obj())
			}
		}

		switch t := cur.(type) {
		case *Pair:
			pushVal(t.Car)
			pushVal(t.Cdr)
		case *Vector:
			for _, v := range t.Elems {
				pushVal(v)
			}
		case *Dict:
			for k, v := range t.Map {
				stack = append(stack, k)
				pushVal(v)
			}
		case *Weak:
			h.pendingWeak = append(h.pendingWeak, t)
		case *Identifier:
			if t.NameID != nil {
				stack = append(stack, t.NameID)
			}
			if t.Env != nil {
				stack = append(stack, t.Env)
			}
		case *Env:
			for k, v := range t.Map {
				stack = append(stack, k)
				pushVal(v)
			}
			if t.Parent != nil {
				stack = append(stack, t.Parent)
			}
		case *Proc:
			if t.Irep != nil {
				stack = append(stack, t.Irep)
			}
			if t.Ctx != nil {
				stack = append(stack, t.Ctx)
			}
			for _, v := range t.Captured {
				pushVal(v)
			}
		case *Context:
			for _, v := range t.Regs {
				pushVal(v)
			}
			if t.Up != nil {
				stack = append(stack, t.Up)
			}
		case *Irep:
			for _, v := range t.Pool {
				pushVal(v)
			}
			for _, c := range t.Children {
				stack = append(stack, c)
			}
		case *ErrorObj:
			if t.Type != nil {
				stack = append(stack, t.Type)
			}
			pushVal(t.Irritants)
		case *Record:
			pushVal(t.Type)
			pushVal(t.Datum)
		case *Checkpoint:
			pushVal(t.In)
			pushVal(t.Out)
			if t.Previous != nil {
				stack = append(stack, t.Previous)
			}
		case *Symbol, *Str, *Blob, *Port:
			// Own no further object or Value edges.
		}
	}
}

// resolveWeakFixpoint marks the values of every reachable weak registry's
// entries whose key is itself already reachable, repeating until no new
// object gets marked. Entries whose key never becomes reachable are left
// for sweep to delete.
func (h *Heap) resolveWeakFixpoint() {
	changed := true
	for changed {
		changed = false
		for _, w := range h.pendingWeak {
			for k, v := range w.Map {
				if !isMarkedObj(k) {
					continue
				}
				if v.IsObject() && !isMarkedObj(v.Obj()) {
					h.markObj(v.Obj())
					changed = true
				}
			}
		}
	}
}

// sweep walks every page's cell range, reclaiming any allocated block whose
// object was not marked and clearing the mark bit on everything that
// survives, so every live object starts the next cycle unmarked. Weak
// entries are pruned first, while the mark bits still tell reachable keys
// from unreachable ones.
func (h *Heap) sweep() {
	h.pruneWeakEntries()
	for _, pg := range h.pages {
		i := pg.base
		for i < pg.end {
			sz := h.meta[i].size
			if sz == 0 {
				i++
				continue
			}
			obj := h.objects[i]
			if obj != nil {
				hdr := obj.Header()
				if hdr.mark {
					hdr.mark = false
				} else {
					h.finalize(obj)
					h.freeObject(obj)
				}
			}
			i += sz
		}
	}
}

// pruneWeakEntries deletes every entry whose key failed to become reachable
// this cycle from every weak registry that was itself reachable.
func (h *Heap) pruneWeakEntries() {
	for _, w := range h.pendingWeak {
		for k := range w.Map {
			if !isMarkedObj(k) {
				delete(w.Map, k)
			}
		}
	}
}

// finalize releases whatever non-GC-managed resource obj privately owns,
// just before its cells are returned to the free list.
func (h *Heap) finalize(obj Object) {
	switch t := obj.(type) {
	case *Str:
		rope.Release(t.Rope)
	case *Symbol:
		delete(h.symtab, t.Name)
	case *Proc:
		if t.Irep != nil {
			DecRefCascade(t.Irep)
		}
	case *Port:
		_ = t.Close()
	}
}
