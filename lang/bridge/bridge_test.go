// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/ilisp/lang/heap"
)

func TestCompileRejectsUnknownCode(t *testing.T) {
	_, err := Compile("oq")
	require.Error(t, err)
}

func TestCompileRejectsTrailingGarbage(t *testing.T) {
	_, err := Compile("oo*z")
	require.Error(t, err)
}

func TestArityRequiredOnly(t *testing.T) {
	s, err := Compile("oo")
	require.NoError(t, err)
	min, max := s.Arity()
	require.Equal(t, 2, min)
	require.Equal(t, 2, max)
}

func TestArityWithOptionalsAndRest(t *testing.T) {
	s, err := Compile("o|i*")
	require.NoError(t, err)
	min, max := s.Arity()
	require.Equal(t, 1, min)
	require.Equal(t, -1, max)
}

func TestBindSimpleValues(t *testing.T) {
	s, err := Compile("oi")
	require.NoError(t, err)

	var v heap.Value
	var n int
	err = s.Bind(heap.Value{}, []heap.Value{heap.Int(7), heap.Int(9)}, &v, &n)
	require.NoError(t, err)
	require.Equal(t, 7, v.AsInt())
	require.Equal(t, 9, n)
}

func TestBindWrongArgCountErrors(t *testing.T) {
	s, err := Compile("oo")
	require.NoError(t, err)
	var a, b heap.Value
	err = s.Bind(heap.Value{}, []heap.Value{heap.Int(1)}, &a, &b)
	require.Error(t, err)
}

func TestBindOptionalArgumentsMayBeOmitted(t *testing.T) {
	s, err := Compile("o|o")
	require.NoError(t, err)
	var a, b heap.Value
	err = s.Bind(heap.Value{}, []heap.Value{heap.Int(1)}, &a, &b)
	require.NoError(t, err)
	require.Equal(t, 1, a.AsInt())
}

func TestBindIntWithExactnessFlag(t *testing.T) {
	s, err := Compile("I")
	require.NoError(t, err)

	var n int
	var exact bool
	err = s.Bind(heap.Value{}, []heap.Value{heap.Float(3.5)}, &n, &exact)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.False(t, exact)

	err = s.Bind(heap.Value{}, []heap.Value{heap.Int(4)}, &n, &exact)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.True(t, exact)
}

func TestBindFloatWidensFromInt(t *testing.T) {
	s, err := Compile("f")
	require.NoError(t, err)
	var f float64
	err = s.Bind(heap.Value{}, []heap.Value{heap.Int(2)}, &f)
	require.NoError(t, err)
	require.Equal(t, 2.0, f)
}

func TestBindTypeMismatchErrors(t *testing.T) {
	s, err := Compile("i")
	require.NoError(t, err)
	var n int
	err = s.Bind(heap.Value{}, []heap.Value{heap.Bool(true)}, &n)
	require.Error(t, err)
}

func TestBindSymbolString(t *testing.T) {
	h := heap.Open()
	sym := h.Intern("foo")
	str := h.NewString([]byte("hello"))

	s, err := Compile("mz")
	require.NoError(t, err)
	var gotSym *heap.Symbol
	var gotStr string
	err = s.Bind(heap.Value{}, []heap.Value{heap.FromObject(sym), heap.FromObject(str)}, &gotSym, &gotStr)
	require.NoError(t, err)
	require.Same(t, sym, gotSym)
	require.Equal(t, "hello", gotStr)
}

func TestBindRestCollectsRemainingArgs(t *testing.T) {
	s, err := Compile("o*")
	require.NoError(t, err)

	var first heap.Value
	var count int
	var rest []heap.Value
	err = s.Bind(heap.Value{}, []heap.Value{heap.Int(1), heap.Int(2), heap.Int(3)}, &first, &count, &rest)
	require.NoError(t, err)
	require.Equal(t, 1, first.AsInt())
	require.Equal(t, 2, count)
	require.Len(t, rest, 2)
	require.Equal(t, 2, rest[0].AsInt())
	require.Equal(t, 3, rest[1].AsInt())
}

func TestBindSelfFlagBindsProcedureValue(t *testing.T) {
	s, err := Compile("&o")
	require.NoError(t, err)

	self := heap.Int(123)
	var selfOut, argOut heap.Value
	err = s.Bind(self, []heap.Value{heap.Int(5)}, &selfOut, &argOut)
	require.NoError(t, err)
	require.Equal(t, 123, selfOut.AsInt())
	require.Equal(t, 5, argOut.AsInt())
}

func TestBindVectorAndBlob(t *testing.T) {
	h := heap.Open()
	vec := h.NewVector(2, heap.Int(0))
	blob := h.NewBlob(2, 0xff)

	s, err := Compile("vb")
	require.NoError(t, err)
	var gotVec *heap.Vector
	var gotBlob *heap.Blob
	err = s.Bind(heap.Value{}, []heap.Value{heap.FromObject(vec), heap.FromObject(blob)}, &gotVec, &gotBlob)
	require.NoError(t, err)
	require.Same(t, vec, gotVec)
	require.Same(t, blob, gotBlob)
}
