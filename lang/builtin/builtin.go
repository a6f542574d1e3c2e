// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package builtin registers the small set of native procedures the
// embedding CLI (cmd/ilisp) needs to drive the reader, writer, and VM
// end to end without a surface-syntax compiler: pair/list primitives,
// arithmetic, equivalence predicates, and the write/display output
// procedures. Each entry is compiled once via bridge.Compile and bound
// into the heap's global namespace as a native Proc, exactly the
// registration shape spec.md §4.H describes for the native bridge.
package builtin

import (
	"fmt"

	"github.com/probechain/ilisp/lang/bridge"
	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/vm"
	"github.com/probechain/ilisp/lang/write"
)

// entry pairs one native procedure's name, argument format, and body.
type entry struct {
	name   string
	format string
	fn     func(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error)
}

// Install compiles and registers every built-in into h's global namespace,
// marking each Proc permanent so it survives collection regardless of
// whether the running program still holds a reference to it.
func Install(h *heap.Heap) error {
	g := h.Globals()
	for _, e := range entries {
		spec, err := bridge.Compile(e.format)
		if err != nil {
			return fmt.Errorf("builtin: compiling format for %s: %w", e.name, err)
		}
		fn := e.fn
		proc := h.NewNativeProc(e.name, func(m heap.Machine, args []heap.Value) (heap.Value, error) {
			return fn(m, spec, heap.Value{}, args)
		})
		h.Permanent(proc)
		sym := h.Intern(e.name)
		g.Map[sym] = heap.FromObject(proc)
	}
	return nil
}

var entries = []entry{
	{"cons", "oo", bCons},
	{"car", "o", bCar},
	{"cdr", "o", bCdr},
	{"pair?", "o", bPairP},
	{"null?", "o", bNullP},
	{"eq?", "oo", bEqP},
	{"eqv?", "oo", bEqvP},
	{"equal?", "oo", bEqualP},
	{"+", "*", bAdd},
	{"-", "*", bSub},
	{"*", "*", bMul},
	{"/", "*", bDiv},
	{"<", "*", bLt},
	{"display", "o", bDisplay},
	{"write", "o", bWrite},
	{"newline", "", bNewline},
	{"string-hash", "z", bStringHash},
	{"error", "z*", bError},
}

func bCons(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var a, b heap.Value
	if err := s.Bind(self, args, &a, &b); err != nil {
		return heap.Value{}, err
	}
	return heap.FromObject(m.Heap().Cons(a, b)), nil
}

func bCar(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var v heap.Value
	if err := s.Bind(self, args, &v); err != nil {
		return heap.Value{}, err
	}
	p, ok := v.Obj().(*heap.Pair)
	if !ok {
		return heap.Value{}, fmt.Errorf("car: not a pair: %s", write.String(v))
	}
	return p.Car, nil
}

func bCdr(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var v heap.Value
	if err := s.Bind(self, args, &v); err != nil {
		return heap.Value{}, err
	}
	p, ok := v.Obj().(*heap.Pair)
	if !ok {
		return heap.Value{}, fmt.Errorf("cdr: not a pair: %s", write.String(v))
	}
	return p.Cdr, nil
}

func bPairP(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var v heap.Value
	if err := s.Bind(self, args, &v); err != nil {
		return heap.Value{}, err
	}
	_, ok := v.Obj().(*heap.Pair)
	return heap.Bool(v.IsObject() && ok), nil
}

func bNullP(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var v heap.Value
	if err := s.Bind(self, args, &v); err != nil {
		return heap.Value{}, err
	}
	return heap.Bool(v.IsNil()), nil
}

func bEqP(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var a, b heap.Value
	if err := s.Bind(self, args, &a, &b); err != nil {
		return heap.Value{}, err
	}
	return heap.Bool(heap.Eq(a, b)), nil
}

func bEqvP(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var a, b heap.Value
	if err := s.Bind(self, args, &a, &b); err != nil {
		return heap.Value{}, err
	}
	return heap.Bool(heap.Eqv(a, b)), nil
}

func bEqualP(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var a, b heap.Value
	if err := s.Bind(self, args, &a, &b); err != nil {
		return heap.Value{}, err
	}
	return heap.Bool(heap.Equal(a, b)), nil
}

func numericArgs(args []heap.Value) ([]float64, bool, error) {
	fs := make([]float64, len(args))
	exact := true
	for i, a := range args {
		switch {
		case a.IsInt():
			fs[i] = float64(a.AsInt())
		case a.IsFloat():
			fs[i] = a.AsFloat()
			exact = false
		default:
			return nil, false, fmt.Errorf("expected a number, got %s", write.String(a))
		}
	}
	return fs, exact, nil
}

func numericResult(f float64, exact bool) heap.Value {
	if exact {
		return heap.Int(int(f))
	}
	return heap.Float(f)
}

func bAdd(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var rest []heap.Value
	var n int
	if err := s.Bind(self, args, &n, &rest); err != nil {
		return heap.Value{}, err
	}
	fs, exact, err := numericArgs(rest)
	if err != nil {
		return heap.Value{}, err
	}
	sum := 0.0
	for _, f := range fs {
		sum += f
	}
	return numericResult(sum, exact), nil
}

func bSub(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var rest []heap.Value
	var n int
	if err := s.Bind(self, args, &n, &rest); err != nil {
		return heap.Value{}, err
	}
	fs, exact, err := numericArgs(rest)
	if err != nil {
		return heap.Value{}, err
	}
	if len(fs) == 0 {
		return heap.Value{}, fmt.Errorf("-: needs at least one argument")
	}
	if len(fs) == 1 {
		return numericResult(-fs[0], exact), nil
	}
	acc := fs[0]
	for _, f := range fs[1:] {
		acc -= f
	}
	return numericResult(acc, exact), nil
}

func bMul(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var rest []heap.Value
	var n int
	if err := s.Bind(self, args, &n, &rest); err != nil {
		return heap.Value{}, err
	}
	fs, exact, err := numericArgs(rest)
	if err != nil {
		return heap.Value{}, err
	}
	prod := 1.0
	for _, f := range fs {
		prod *= f
	}
	return numericResult(prod, exact), nil
}

func bDiv(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var rest []heap.Value
	var n int
	if err := s.Bind(self, args, &n, &rest); err != nil {
		return heap.Value{}, err
	}
	fs, _, err := numericArgs(rest)
	if err != nil {
		return heap.Value{}, err
	}
	if len(fs) == 0 {
		return heap.Value{}, fmt.Errorf("/: needs at least one argument")
	}
	if len(fs) == 1 {
		if fs[0] == 0 {
			return heap.Value{}, fmt.Errorf("/: division by zero")
		}
		return heap.Float(1 / fs[0]), nil
	}
	acc := fs[0]
	for _, f := range fs[1:] {
		if f == 0 {
			return heap.Value{}, fmt.Errorf("/: division by zero")
		}
		acc /= f
	}
	return heap.Float(acc), nil
}

func bLt(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var rest []heap.Value
	var n int
	if err := s.Bind(self, args, &n, &rest); err != nil {
		return heap.Value{}, err
	}
	fs, _, err := numericArgs(rest)
	if err != nil {
		return heap.Value{}, err
	}
	for i := 1; i < len(fs); i++ {
		if !(fs[i-1] < fs[i]) {
			return heap.Bool(false), nil
		}
	}
	return heap.Bool(true), nil
}

func bDisplay(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var v heap.Value
	if err := s.Bind(self, args, &v); err != nil {
		return heap.Value{}, err
	}
	fmt.Print(write.DisplayString(v))
	return heap.Undef(), nil
}

func bWrite(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var v heap.Value
	if err := s.Bind(self, args, &v); err != nil {
		return heap.Value{}, err
	}
	fmt.Print(write.String(v))
	return heap.Undef(), nil
}

func bNewline(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	if err := s.Bind(self, args); err != nil {
		return heap.Value{}, err
	}
	fmt.Println()
	return heap.Undef(), nil
}

// bError implements (error message irritant ...), signaling a non-continuable
// exception of type "error" with the VM's live call-info chain captured into
// the condition object's Stack field before the raise, so a handler that
// never returns still leaves a usable backtrace behind in the error object.
func bError(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var message string
	var n int
	var irritants []heap.Value
	if err := s.Bind(self, args, &message, &n, &irritants); err != nil {
		return heap.Value{}, err
	}
	machine, ok := m.(*vm.VM)
	if !ok {
		return heap.Value{}, fmt.Errorf("error: called outside of a VM")
	}
	typ := m.Heap().Intern("error")
	return machine.RaiseError(typ, message, m.Heap().List(irritants...))
}

func bStringHash(m heap.Machine, s *bridge.Spec, self heap.Value, args []heap.Value) (heap.Value, error) {
	var str string
	if err := s.Bind(self, args, &str); err != nil {
		return heap.Value{}, err
	}
	return heap.Int(int(uint32(bridge.StringHash(str)))), nil
}
