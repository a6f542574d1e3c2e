// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/ilisp/lang/builtin"
	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/vm"
)

func lookup(t *testing.T, h *heap.Heap, name string) heap.Value {
	t.Helper()
	sym, ok := h.Lookup(name)
	require.True(t, ok, "expected %s to have been interned by Install", name)
	v, ok := h.Globals().Map[sym]
	require.True(t, ok, "expected %s to be bound", name)
	return v
}

func TestInstallBindsArithmetic(t *testing.T) {
	h := heap.Open()
	require.NoError(t, builtin.Install(h))
	m := vm.New(h)

	plus := lookup(t, h, "+")
	result, err := m.Invoke(plus, []heap.Value{heap.Int(1), heap.Int(2), heap.Int(3)})
	require.NoError(t, err)
	require.True(t, result.IsInt())
	require.Equal(t, 6, result.AsInt())
}

func TestInstallBindsConsCarCdr(t *testing.T) {
	h := heap.Open()
	require.NoError(t, builtin.Install(h))
	m := vm.New(h)

	cons := lookup(t, h, "cons")
	pair, err := m.Invoke(cons, []heap.Value{heap.Int(1), heap.Int(2)})
	require.NoError(t, err)

	car := lookup(t, h, "car")
	carResult, err := m.Invoke(car, []heap.Value{pair})
	require.NoError(t, err)
	require.Equal(t, 1, carResult.AsInt())

	cdr := lookup(t, h, "cdr")
	cdrResult, err := m.Invoke(cdr, []heap.Value{pair})
	require.NoError(t, err)
	require.Equal(t, 2, cdrResult.AsInt())
}

func TestInstallBindsEquivalencePredicates(t *testing.T) {
	h := heap.Open()
	require.NoError(t, builtin.Install(h))
	m := vm.New(h)

	equalp := lookup(t, h, "equal?")
	a := heap.FromObject(h.Cons(heap.Int(1), heap.Int(2)))
	b := heap.FromObject(h.Cons(heap.Int(1), heap.Int(2)))

	result, err := m.Invoke(equalp, []heap.Value{a, b})
	require.NoError(t, err)
	require.True(t, result.Truthy())

	eqp := lookup(t, h, "eq?")
	result, err = m.Invoke(eqp, []heap.Value{a, b})
	require.NoError(t, err)
	require.False(t, result.Truthy())
}

func TestErrorRaisesWithoutInstalledHandler(t *testing.T) {
	h := heap.Open()
	require.NoError(t, builtin.Install(h))
	m := vm.New(h)

	errorProc := lookup(t, h, "error")
	_, err := m.Invoke(errorProc, []heap.Value{heap.FromObject(h.NewString([]byte("boom")))})
	require.Error(t, err, "raising with no exception handler installed is itself an error")
}

func TestStringHashStable(t *testing.T) {
	h := heap.Open()
	require.NoError(t, builtin.Install(h))
	m := vm.New(h)

	hashFn := lookup(t, h, "string-hash")
	s1 := heap.FromObject(h.NewString([]byte("hello")))
	s2 := heap.FromObject(h.NewString([]byte("hello")))

	r1, err := m.Invoke(hashFn, []heap.Value{s1})
	require.NoError(t, err)
	r2, err := m.Invoke(hashFn, []heap.Value{s2})
	require.NoError(t, err)
	require.Equal(t, r1.AsInt(), r2.AsInt())
}
