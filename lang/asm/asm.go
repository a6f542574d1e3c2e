// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package asm is a small literal bytecode assembler: a way to hand-build an
// Irep's instruction stream and constant pools without going through a
// surface-syntax compiler. Surface compilation from S-expressions to
// bytecode is out of scope for this runtime; this package exists so the
// virtual machine, the reader, and the native-procedure bridge can be
// exercised end to end regardless.
package asm

import (
	"fmt"

	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/vm"
)

// Builder incrementally assembles one Irep's code and pools.
type Builder struct {
	code     []byte
	ints     []int
	doubles  []float64
	pool     []heap.Value
	children []*heap.Irep

	labels  map[string]int
	patches []patch
}

type patch struct {
	at    int
	label string
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{labels: make(map[string]int)}
}

// Op0 emits a zero-operand instruction.
func (b *Builder) Op0(op vm.Opcode) *Builder {
	b.code = append(b.code, byte(op))
	return b
}

// Op1 emits a one-operand instruction.
func (b *Builder) Op1(op vm.Opcode, a int32) *Builder {
	b.code = append(b.code, byte(op))
	b.code = vm.EncodeOperand(b.code, a)
	return b
}

// Op2 emits a two-operand instruction.
func (b *Builder) Op2(op vm.Opcode, a, c int32) *Builder {
	b.code = append(b.code, byte(op))
	b.code = vm.EncodeOperand(b.code, a)
	b.code = vm.EncodeOperand(b.code, c)
	return b
}

// Label records the current instruction offset under name, for a later Jump
// to resolve against.
func (b *Builder) Label(name string) *Builder {
	b.labels[name] = len(b.code)
	return b
}

// Jump emits a JMP or JMPIF targeting label, which may be defined before or
// after this call; the target offset is patched in by Build.
func (b *Builder) Jump(op vm.Opcode, label string) *Builder {
	b.patches = append(b.patches, patch{at: len(b.code) + 1, label: label})
	b.code = append(b.code, byte(op))
	b.code = vm.EncodeOperand(b.code, 0)
	return b
}

// AddInt interns v in the int pool and returns its index.
func (b *Builder) AddInt(v int) int32 {
	b.ints = append(b.ints, v)
	return int32(len(b.ints) - 1)
}

// AddDouble interns v in the double pool and returns its index.
func (b *Builder) AddDouble(v float64) int32 {
	b.doubles = append(b.doubles, v)
	return int32(len(b.doubles) - 1)
}

// AddConst interns v in the constant pool and returns its index.
func (b *Builder) AddConst(v heap.Value) int32 {
	b.pool = append(b.pool, v)
	return int32(len(b.pool) - 1)
}

// AddChild registers a nested Irep (a lambda expression's body, for a
// LAMBDA instruction to close over) and returns its index.
func (b *Builder) AddChild(rep *heap.Irep) int32 {
	b.children = append(b.children, rep)
	return int32(len(b.children) - 1)
}

// Build resolves all pending label patches and allocates the finished Irep
// on h.
func (b *Builder) Build(h *heap.Heap, argc, localc, capturec int, variadic bool) (*heap.Irep, error) {
	for _, p := range b.patches {
		target, ok := b.labels[p.label]
		if !ok {
			return nil, fmt.Errorf("asm: undefined label %q", p.label)
		}
		copy(b.code[p.at:p.at+4], vm.EncodeOperand(nil, int32(target)))
	}
	return h.NewIrep(b.code, b.ints, b.doubles, b.pool, b.children, argc, localc, capturec, variadic), nil
}
