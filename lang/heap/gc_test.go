// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRootSource lets tests hand the collector a fixed set of external
// roots, standing in for the VM's operand stack / call-info chain.
type fakeRootSource struct{ roots []Value }

func (f fakeRootSource) GCRoots(mark func(Value)) {
	for _, v := range f.roots {
		mark(v)
	}
}

func TestCollectReclaimsUnreachablePair(t *testing.T) {
	h := Open()
	mark := h.ArenaPreserve()
	h.Cons(Int(1), Nil())
	h.ArenaRestore(mark) // nothing roots it anymore

	before := h.Stats().UsedUnits
	require.Equal(t, 1, int(before))

	h.Collect()
	require.Zero(t, h.Stats().UsedUnits)
}

func TestCollectKeepsReachableChain(t *testing.T) {
	h := Open()
	mark := h.ArenaPreserve()
	tail := h.Cons(Int(3), Nil())
	mid := h.Cons(Int(2), FromObject(tail))
	head := h.Cons(Int(1), FromObject(mid))
	h.ArenaRestore(mark)

	h.Collect(fakeRootSource{roots: []Value{FromObject(head)}})
	require.Equal(t, uint32(3), h.Stats().UsedUnits)

	require.False(t, head.Header().mark, "mark bit must be clear after collection completes")
}

func TestCollectClearsMarkBitsBetweenCycles(t *testing.T) {
	h := Open()
	p := h.Cons(Int(1), Nil())
	root := fakeRootSource{roots: []Value{FromObject(p)}}

	h.Collect(root)
	require.False(t, p.Header().mark)
	h.Collect(root)
	require.False(t, p.Header().mark)
	require.Equal(t, uint32(1), h.Stats().UsedUnits)
}

func TestWeakRegistryEntryDroppedWhenKeyUnreachable(t *testing.T) {
	h := Open()
	w := h.NewWeak()
	h.globals = w // make the weak map itself a root via Globals

	mark := h.ArenaPreserve()
	key := h.Cons(Int(9), Nil())
	h.ArenaRestore(mark)
	w.Map[key] = Int(42)

	h.Collect()
	_, ok := w.Map[key]
	require.False(t, ok, "entry keyed on an unreachable object must be pruned")
}

func TestWeakRegistryEntryKeptWhenKeyReachable(t *testing.T) {
	h := Open()
	w := h.NewWeak()
	h.globals = w

	key := h.Cons(Int(9), Nil())
	w.Map[key] = Int(42)

	h.Collect(fakeRootSource{roots: []Value{FromObject(key)}})
	v, ok := w.Map[key]
	require.True(t, ok)
	require.True(t, Eq(v, Int(42)))
}

func TestSweepPrunesUnreachableInternedSymbol(t *testing.T) {
	h := Open()
	mark := h.ArenaPreserve()
	h.Intern("transient")
	h.ArenaRestore(mark)
	require.Equal(t, 1, h.SymbolCount())

	h.Collect()
	require.Equal(t, 0, h.SymbolCount())
}

func TestPermanentSymbolSurvivesWithoutOtherRoots(t *testing.T) {
	h := Open()
	sym := h.Intern("quote")
	h.Permanent(sym)

	h.Collect()
	_, ok := h.Lookup("quote")
	require.True(t, ok)
}

func TestProcFinalizeReleasesIrepRefcount(t *testing.T) {
	h := Open()
	rep := h.NewIrep(nil, nil, nil, nil, nil, 0, 0, 0, false)
	rep.IncRef() // the test itself holds a logical reference

	mark := h.ArenaPreserve()
	h.NewClosure("f", rep, nil)
	h.ArenaRestore(mark)

	h.Collect()
	require.Equal(t, 1, rep.refcount, "only the test's own reference should remain")
}

func TestArenaRestoreDropsOnlyObjectsAfterMark(t *testing.T) {
	h := Open()
	kept := h.Cons(Int(1), Nil())
	mark := h.ArenaPreserve()
	h.Cons(Int(2), Nil())
	h.ArenaRestore(mark)

	h.Collect(fakeRootSource{roots: []Value{FromObject(kept)}})
	require.Equal(t, uint32(1), h.Stats().UsedUnits)
}
