// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/ilisp/lang/heap"
)

type fakeInvoker struct {
	fn func(proc heap.Value, args []heap.Value) (heap.Value, error)
}

func (f fakeInvoker) Invoke(proc heap.Value, args []heap.Value) (heap.Value, error) {
	return f.fn(proc, args)
}

func TestRaiseContinuableReturnsHandlerResult(t *testing.T) {
	h := heap.Open()
	var s Stack
	s.Push(heap.Int(0)) // the "handler" value is opaque to Stack; only Invoker interprets it

	inv := fakeInvoker{fn: func(proc heap.Value, args []heap.Value) (heap.Value, error) {
		require.Len(t, args, 1)
		return heap.Int(args[0].AsInt() + 1), nil
	}}

	result, err := s.Raise(inv, h, heap.Int(41), true)
	require.NoError(t, err)
	require.Equal(t, 42, result.AsInt())
	require.Equal(t, 1, s.Depth(), "the handler must be reinstalled after a continuable raise")
}

func TestRaiseNonContinuableErrorsIfHandlerReturns(t *testing.T) {
	h := heap.Open()
	var s Stack
	s.Push(heap.Int(0))

	inv := fakeInvoker{fn: func(proc heap.Value, args []heap.Value) (heap.Value, error) {
		return heap.Undef(), nil
	}}

	_, err := s.Raise(inv, h, heap.Int(1), false)
	require.Error(t, err)
}

func TestRaiseWithNoHandlerInstalledErrors(t *testing.T) {
	h := heap.Open()
	var s Stack
	_, err := s.Raise(fakeInvoker{}, h, heap.Int(1), true)
	require.Error(t, err)
}

func TestNestedRaiseSeesNextOuterHandler(t *testing.T) {
	h := heap.Open()
	var s Stack
	s.Push(heap.Int(1)) // outer handler
	s.Push(heap.Int(2)) // inner handler

	var sawDepthDuringInnerHandler int
	var nestedResult heap.Value
	var nestedErr error
	var inv fakeInvoker
	inv = fakeInvoker{fn: func(proc heap.Value, args []heap.Value) (heap.Value, error) {
		if proc.AsInt() == 2 {
			sawDepthDuringInnerHandler = s.Depth()
			// Raise again from inside the inner handler: only the outer
			// handler (which answers 99) is installed at this point.
			nestedResult, nestedErr = s.Raise(inv, h, args[0], true)
			return heap.Int(0), nil
		}
		return heap.Int(99), nil
	}}

	_, err := s.Raise(inv, h, heap.Int(7), true)
	require.NoError(t, err)
	require.Equal(t, 1, sawDepthDuringInnerHandler, "inner handler must run with itself popped")
	require.NoError(t, nestedErr)
	require.Equal(t, 99, nestedResult.AsInt(), "nested raise must reach the outer handler")
	require.Equal(t, 2, s.Depth(), "both handlers must be reinstalled afterward")
}

func TestCurrentErrorRestoredAfterHandlerReturns(t *testing.T) {
	h := heap.Open()
	var s Stack
	s.Push(heap.Int(0))
	h.CurrentError = heap.Int(-1)

	inv := fakeInvoker{fn: func(proc heap.Value, args []heap.Value) (heap.Value, error) {
		require.Equal(t, 5, h.CurrentError.AsInt())
		return heap.Undef(), nil
	}}
	_, err := s.Raise(inv, h, heap.Int(5), true)
	require.NoError(t, err)
	require.Equal(t, -1, h.CurrentError.AsInt())
}

func TestWinderPathToComputesSharedAncestor(t *testing.T) {
	h := heap.Open()
	var w Winder

	root := w.Wind(h, heap.Int(10), heap.Int(11))
	second := w.Wind(h, heap.Int(20), heap.Int(21)) // current: root -> second

	w.current = root // simulate having unwound back to root
	other := w.Wind(h, heap.Int(30), heap.Int(31)) // a sibling branch: root -> other

	// Now simulate standing inside "second" and computing the path to
	// "other": both hang off the shared ancestor root, so leaving second
	// means running its after-thunk and entering other means running its
	// before-thunk, with root itself untouched either way.
	w.current = second
	leave, enter := w.PathTo(other)
	require.Len(t, leave, 1)
	require.Equal(t, 21, leave[0].AsInt(), "leaving second must run its after-thunk")
	require.Len(t, enter, 1)
	require.Equal(t, 30, enter[0].AsInt(), "entering other must run its before-thunk")
}

func TestWinderUnwindPopsInnermost(t *testing.T) {
	h := heap.Open()
	var w Winder
	w.Wind(h, heap.Int(1), heap.Int(2))
	inner := w.Wind(h, heap.Int(3), heap.Int(4))
	require.Equal(t, inner, w.Current())
	w.Unwind()
	require.NotEqual(t, inner, w.Current())
}
