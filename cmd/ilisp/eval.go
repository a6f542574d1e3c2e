// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"fmt"

	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/vm"
)

// evalTop is a minimal apply-only evaluator: the surface-syntax compiler
// (macro expander, special forms like define and lambda) is out of scope
// for this runtime, so the REPL can only apply already-bound procedures to
// already-bound values, exactly the shape of spec.md §8's hand-assembled
// end-to-end scenarios but driven interactively instead of through
// lang/asm. A symbol evaluates to its global binding; a pair evaluates its
// car and every element of its cdr, then applies the result; anything else
// is self-evaluating.
func evalTop(m *vm.VM, v heap.Value) (heap.Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	switch obj := v.Obj().(type) {
	case *heap.Symbol:
		bound, ok := m.Heap().Globals().Map[obj]
		if !ok {
			return heap.Value{}, fmt.Errorf("unbound variable: %s", obj.Name)
		}
		return bound, nil
	case *heap.Pair:
		proc, err := evalTop(m, obj.Car)
		if err != nil {
			return heap.Value{}, err
		}
		args, err := evalList(m, obj.Cdr)
		if err != nil {
			return heap.Value{}, err
		}
		return m.Invoke(proc, args)
	default:
		return v, nil
	}
}

// evalList evaluates each element of the proper list v, the argument
// positions of a procedure application.
func evalList(m *vm.VM, v heap.Value) ([]heap.Value, error) {
	var out []heap.Value
	for {
		if v.IsNil() {
			return out, nil
		}
		p, ok := v.Obj().(*heap.Pair)
		if !ok {
			return nil, fmt.Errorf("improper argument list")
		}
		arg, err := evalTop(m, p.Car)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
		v = p.Cdr
	}
}
