// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package reader

import "github.com/probechain/ilisp/lang/heap"

// labelSlot tracks one #n=/#n# binding for the datum currently being read.
//
// For pair and vector labels, ready becomes true the instant the
// placeholder object is allocated, before its contents are filled in: the
// placeholder *is* the value from that point on, so a #n# reference
// encountered while still reading inside DATUM resolves to the same object
// whose car/cdr (or elements) are mutated into place once DATUM finishes.
// For every other datum shape there is no object to hand out early, so
// ready stays false until #n=DATUM completes — a #n# seen before then is
// unresolvable, matching spec.md §4.F.
type labelSlot struct {
	value heap.Value
	ready bool
}

// defineLabel registers n as currently being read, with no value yet
// resolvable (the non-container case).
func (r *Reader) defineLabelPending(n int) *labelSlot {
	slot := &labelSlot{}
	r.labels[n] = slot
	return slot
}

// defineLabelContainer registers n against an already-allocated placeholder
// object (a Pair or Vector) that callers will mutate in place once the
// datum finishes reading.
func (r *Reader) defineLabelContainer(n int, placeholder heap.Value) *labelSlot {
	slot := &labelSlot{value: placeholder, ready: true}
	r.labels[n] = slot
	return slot
}

// resolveLabel finalizes a pending (non-container) label with its value.
func (r *Reader) resolveLabel(slot *labelSlot, v heap.Value) {
	slot.value = v
	slot.ready = true
}

// lookupLabel returns the value bound to #n#, failing if the label was
// never defined in this datum or is still mid-definition.
func (r *Reader) lookupLabel(n int) (heap.Value, error) {
	slot, ok := r.labels[n]
	if !ok {
		return heap.Value{}, r.errf("reference to undefined datum label #%d#", n)
	}
	if !slot.ready {
		return heap.Value{}, r.errf("datum label #%d# referenced before #%d= completed", n, n)
	}
	return slot.value, nil
}
