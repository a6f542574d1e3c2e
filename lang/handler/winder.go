// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handler

import "github.com/probechain/ilisp/lang/heap"

// Winder tracks the currently active dynamic-wind checkpoint chain: the
// linked list of (before, after) thunk pairs whose before-thunks have run
// and whose after-thunks have not yet run. Escaping or re-entering a
// continuation captured at a different point in this chain replays the
// after-thunks being left and the before-thunks being entered, in the
// correct order.
type Winder struct {
	current *heap.Checkpoint
}

// Current returns the innermost active checkpoint, or nil if dynamic-wind
// is not nested at all.
func (w *Winder) Current() *heap.Checkpoint { return w.current }

// Wind pushes a new checkpoint for a dynamic-wind call after its before
// thunk has already run, and returns it.
func (w *Winder) Wind(h *heap.Heap, before, after heap.Value) *heap.Checkpoint {
	cp := h.NewCheckpoint(before, after, w.current)
	w.current = cp
	return cp
}

// Unwind pops the innermost checkpoint, to be called once its after-thunk
// has run.
func (w *Winder) Unwind() {
	if w.current == nil {
		panic("handler: Unwind with no active checkpoint")
	}
	w.current = w.current.Previous
}

// PathTo computes the sequence of after-thunks to run (leaving the current
// chain, innermost first) and before-thunks to run (entering target,
// outermost first) to transfer control from the current checkpoint to
// target. This is the standard common-ancestor unwind/rewind split used to
// implement call/cc across dynamic-wind boundaries.
func (w *Winder) PathTo(target *heap.Checkpoint) (leave []heap.Value, enter []heap.Value) {
	from := w.current

	fromChain := chainToRoot(from)
	toChain := chainToRoot(target)

	// Find the deepest common checkpoint: chainToRoot orders both chains
	// outermost first, so the shared ancestors form a common prefix.
	common := 0
	for common < len(fromChain) && common < len(toChain) && fromChain[common] == toChain[common] {
		common++
	}

	for i := len(fromChain) - 1; i >= common; i-- {
		leave = append(leave, fromChain[i].Out)
	}
	for i := common; i < len(toChain); i++ {
		enter = append(enter, toChain[i].In)
	}
	return leave, enter
}

// chainToRoot returns cp's ancestor chain ordered outermost (index 0) to
// innermost (cp itself, last).
func chainToRoot(cp *heap.Checkpoint) []*heap.Checkpoint {
	var chain []*heap.Checkpoint
	for c := cp; c != nil; c = c.Previous {
		chain = append(chain, c)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// GCRoots marks every checkpoint on the current chain together with its
// before/after thunks, satisfying heap.RootSource. Ancestor checkpoints reachable only
// through w.current.Previous would otherwise have no other root once a
// continuation that could still reach them has not yet been captured into
// any reachable Value.
func (w *Winder) GCRoots(mark func(heap.Value)) {
	for c := w.current; c != nil; c = c.Previous {
		mark(heap.FromObject(c))
		mark(c.In)
		mark(c.Out)
	}
}
