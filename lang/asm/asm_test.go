// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package asm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/vm"
)

func TestBuilderAssemblesCallableProcedure(t *testing.T) {
	h := heap.Open()

	b := New()
	oneIdx := b.AddInt(1)
	twoIdx := b.AddInt(2)
	b.Op1(vm.OpPUSHINT, oneIdx)
	b.Op1(vm.OpPUSHINT, twoIdx)
	b.Op0(vm.OpADD)
	b.Op0(vm.OpRET)

	rep, err := b.Build(h, 0, 0, 0, false)
	require.NoError(t, err)

	proc := h.NewClosure("anon", rep, nil)
	machine := vm.New(h)
	result, err := machine.Call(proc, nil)
	require.NoError(t, err)
	require.Equal(t, 3, result.AsInt())
}

func TestBuilderResolvesForwardAndBackwardLabels(t *testing.T) {
	h := heap.Open()

	// (if #t 10 20), exercised as a standalone zero-arg procedure.
	b := New()
	tenIdx := b.AddInt(10)
	twentyIdx := b.AddInt(20)
	b.Op0(vm.OpPUSHTRUE)
	b.Jump(vm.OpJMPIF, "then")
	b.Op1(vm.OpPUSHINT, twentyIdx)
	b.Jump(vm.OpJMP, "end")
	b.Label("then")
	b.Op1(vm.OpPUSHINT, tenIdx)
	b.Label("end")
	b.Op0(vm.OpRET)

	rep, err := b.Build(h, 0, 0, 0, false)
	require.NoError(t, err)

	proc := h.NewClosure("anon", rep, nil)
	machine := vm.New(h)
	result, err := machine.Call(proc, nil)
	require.NoError(t, err)
	require.Equal(t, 10, result.AsInt())
}

func TestBuilderReportsUndefinedLabel(t *testing.T) {
	h := heap.Open()
	b := New()
	b.Jump(vm.OpJMP, "nowhere")
	b.Op0(vm.OpRET)
	_, err := b.Build(h, 0, 0, 0, false)
	require.Error(t, err)
}
