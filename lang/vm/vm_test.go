// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/ilisp/lang/heap"
)

// buildAddOneTwo assembles a zero-argument procedure body computing (+ 1 2)
// directly via PUSHINT/ADD, standing in for what a surface compiler would
// emit for that expression.
func buildAddOneTwo(t *testing.T, h *heap.Heap) *heap.Irep {
	t.Helper()
	var code []byte
	emit := func(op Opcode, operand int32) {
		code = append(code, byte(op))
		code = EncodeOperand(code, operand)
	}
	emit0 := func(op Opcode) { code = append(code, byte(op)) }

	ints := []int{1, 2}
	emit(OpPUSHINT, 0)
	emit(OpPUSHINT, 1)
	emit0(OpADD)
	emit0(OpRET)

	return h.NewIrep(code, ints, nil, nil, nil, 0, 0, 0, false)
}

func TestSimpleArithmeticProgram(t *testing.T) {
	h := heap.Open()
	rep := buildAddOneTwo(t, h)
	proc := h.NewClosure("anonymous", rep, nil)

	machine := New(h)
	result, err := machine.Call(proc, nil)
	require.NoError(t, err)
	require.True(t, result.IsInt())
	require.Equal(t, 3, result.AsInt())
}

func TestCallAndReturnNesting(t *testing.T) {
	h := heap.Open()

	// inner(x) = x + 1
	innerCode := []byte{}
	innerCode = append(innerCode, byte(OpLREF))
	innerCode = EncodeOperand(innerCode, 0)
	innerCode = append(innerCode, byte(OpPUSHINT))
	innerCode = EncodeOperand(innerCode, 0)
	innerCode = append(innerCode, byte(OpADD))
	innerCode = append(innerCode, byte(OpRET))
	inner := h.NewIrep(innerCode, []int{1}, nil, nil, nil, 1, 1, 0, false)
	innerProc := h.NewClosure("inner", inner, nil)

	// outer() = inner(41)
	innerConst := heap.FromObject(innerProc)
	outerCode := []byte{}
	outerCode = append(outerCode, byte(OpPUSHCONST))
	outerCode = EncodeOperand(outerCode, 0)
	outerCode = append(outerCode, byte(OpPUSHINT))
	outerCode = EncodeOperand(outerCode, 0)
	outerCode = append(outerCode, byte(OpCALL))
	outerCode = EncodeOperand(outerCode, 1)
	outerCode = append(outerCode, byte(OpRET))
	outer := h.NewIrep(outerCode, []int{41}, nil, []heap.Value{innerConst}, nil, 0, 0, 0, false)
	outerProc := h.NewClosure("outer", outer, nil)

	machine := New(h)
	result, err := machine.Call(outerProc, nil)
	require.NoError(t, err)
	require.Equal(t, 42, result.AsInt())
}

func TestTailCallDoesNotGrowCallStack(t *testing.T) {
	h := heap.Open()

	// loop(n) = if n <= 0 then n else loop(n - 1)   [tail position]
	code := []byte{}
	emit := func(op Opcode, operand int32) {
		code = append(code, byte(op))
		code = EncodeOperand(code, operand)
	}
	emit0 := func(op Opcode) { code = append(code, byte(op)) }

	// 0: lref 0           ; n
	// 1: pushint 0        ; 0
	// 2: le
	// 3: jmpif DONE
	// 4: pushconst 0      ; self, then lref 0 / pushint 1 / sub / tailcall 1
	// ...
	emit(OpLREF, 0)
	emit(OpPUSHINT, 0)
	emit0(OpLE)
	jmpifAt := len(code)
	emit(OpJMPIF, 0) // patched below
	// recursive branch: push self, push (n-1), tailcall 1
	emit(OpPUSHCONST, 0) // self (patched after proc exists... use placeholder const slot)
	emit(OpLREF, 0)
	emit(OpPUSHINT, 1)
	emit0(OpSUB)
	emit(OpTAILCALL, 1)
	doneLabel := len(code)
	emit(OpLREF, 0)
	emit0(OpRET)

	// patch jmpif target to doneLabel
	copy(code[jmpifAt+1:jmpifAt+5], EncodeOperand(nil, int32(doneLabel)))

	rep := h.NewIrep(code, []int{0, 1}, nil, []heap.Value{heap.Undef()}, nil, 1, 1, 0, false)
	proc := h.NewClosure("loop", rep, nil)
	// self-reference: patch the constant pool slot to point at proc itself.
	rep.Pool[0] = heap.FromObject(proc)

	machine := New(h)
	result, err := machine.Call(proc, []heap.Value{heap.Int(100000)})
	require.NoError(t, err)
	require.Equal(t, 0, result.AsInt())
	require.LessOrEqual(t, len(machine.calls), 1, "tail calls must not grow the call-info stack")
}

func TestClosureCapturesAndMutatesUpvalue(t *testing.T) {
	h := heap.Open()

	// makeCounter() returns a closure over local 0 (count), initialized to 0:
	//   inc() = (set! count (+ count 1)) ; count
	incCode := []byte{}
	incCode = append(incCode, byte(OpCREF))
	incCode = EncodeOperand(incCode, 0)
	incCode = EncodeOperand(incCode, 0)
	incCode = append(incCode, byte(OpPUSHINT))
	incCode = EncodeOperand(incCode, 0)
	incCode = append(incCode, byte(OpADD))
	incCode = append(incCode, byte(OpCSET))
	incCode = EncodeOperand(incCode, 0)
	incCode = EncodeOperand(incCode, 0)
	incCode = append(incCode, byte(OpPOP)) // discard the Undef CSET result
	incCode = append(incCode, byte(OpCREF))
	incCode = EncodeOperand(incCode, 0)
	incCode = EncodeOperand(incCode, 0)
	incCode = append(incCode, byte(OpRET))
	incRep := h.NewIrep(incCode, []int{1}, nil, nil, nil, 0, 0, 1, false)

	makeCounterCode := []byte{}
	makeCounterCode = append(makeCounterCode, byte(OpPUSHINT))
	makeCounterCode = EncodeOperand(makeCounterCode, 0) // ints[0] = 0, the initial count
	makeCounterCode = append(makeCounterCode, byte(OpLSET))
	makeCounterCode = EncodeOperand(makeCounterCode, 0)
	makeCounterCode = append(makeCounterCode, byte(OpPOP)) // discard LSET's Undef result
	makeCounterCode = append(makeCounterCode, byte(OpLAMBDA))
	makeCounterCode = EncodeOperand(makeCounterCode, 0)
	makeCounterCode = append(makeCounterCode, byte(OpRET))
	makeCounterRep := h.NewIrep(makeCounterCode, []int{0}, nil, nil, []*heap.Irep{incRep}, 0, 1, 0, false)
	makeCounterProc := h.NewClosure("make-counter", makeCounterRep, nil)

	machine := New(h)
	counterVal, err := machine.Call(makeCounterProc, nil)
	require.NoError(t, err)
	counter, err := asProc(counterVal)
	require.NoError(t, err)

	r1, err := machine.Call(counter, nil)
	require.NoError(t, err)
	require.Equal(t, 1, r1.AsInt())

	r2, err := machine.Call(counter, nil)
	require.NoError(t, err)
	require.Equal(t, 2, r2.AsInt())
}
