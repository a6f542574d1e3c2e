// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"fmt"
	"strings"

	"github.com/probechain/ilisp/lang/heap"
)

// Backtrace formats the live call-info chain, innermost frame first, the
// way error.c's error constructor captures the C call stack before any
// unwind happens. It is a snapshot: nothing here is retained once the
// corresponding activation records pop.
func (vm *VM) Backtrace() string {
	if len(vm.calls) == 0 {
		return ""
	}
	var b strings.Builder
	for i := len(vm.calls) - 1; i >= 0; i-- {
		frame := vm.calls[i]
		fmt.Fprintf(&b, "  at pc=%d argc=%d\n", frame.pc, frame.irep.Argc)
	}
	return b.String()
}

// RaiseError builds a condition object of type typ carrying message and
// irritants, with its Stack field populated from Backtrace at construction
// time rather than lazily, and raises it as a non-continuable exception.
// The error builtin calls this instead of constructing an ErrorObj by hand.
// The VM's own runtime failures (ErrNotANumber, ErrDivisionByZero and the
// other sentinels in errors.go) are returned as plain Go errors and do not
// pass through here or reach the handler stack.
func (vm *VM) RaiseError(typ *heap.Symbol, message string, irritants heap.Value) (heap.Value, error) {
	stack := vm.Backtrace()
	cond := vm.h.NewError(typ, message, irritants, stack)
	return vm.handlers.Raise(vm, vm.h, heap.FromObject(cond), false)
}
