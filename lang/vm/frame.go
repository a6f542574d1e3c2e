// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import "github.com/probechain/ilisp/lang/heap"

// callInfo is one activation record. Its register file lives in a
// heap-allocated Context from the moment the call is made, not in a bare Go
// slice that would later need to "tear off" onto the heap the first time a
// closure captures it — letting the Go garbage collector, rather than this
// package, own the storage makes that migration unobservable: a closure
// created inside this call simply captures ctx directly, and set! on any
// variable the closure sees is visible here too, since both sides hold the
// same *heap.Context.
type callInfo struct {
	irep *heap.Irep
	pc   int
	ctx  *heap.Context // this call's own locals, ctx.Up is the captured chain
}

func readOperand(code []byte, at int) int32 {
	return int32(code[at]) | int32(code[at+1])<<8 | int32(code[at+2])<<16 | int32(code[at+3])<<24
}

// EncodeOperand appends v to code as 4 little-endian bytes; exported for
// package asm's assembler.
func EncodeOperand(code []byte, v int32) []byte {
	return append(code, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
