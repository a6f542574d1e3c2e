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

	"github.com/probechain/ilisp/lang/handler"
	"github.com/probechain/ilisp/lang/heap"
)

// VM executes compiled Ireps over a heap, an operand stack, a call-info
// stack of activation records, an exception-handler stack, and a
// dynamic-wind checkpoint chain.
type VM struct {
	h        *heap.Heap
	handlers *handler.Stack
	winder   *handler.Winder

	data  []heap.Value
	calls []callInfo
}

// New creates a VM over h with fresh, empty handler and dynamic-wind state.
func New(h *heap.Heap) *VM {
	return &VM{h: h, handlers: &handler.Stack{}, winder: &handler.Winder{}}
}

// Heap satisfies heap.Machine, letting native procedures reach the heap
// through the Machine argument they're called with.
func (vm *VM) Heap() *heap.Heap { return vm.h }

// Handlers returns the VM's exception-handler stack, for native procedures
// implementing with-exception-handler, raise, and raise-continuable.
func (vm *VM) Handlers() *handler.Stack { return vm.handlers }

// Winder returns the VM's dynamic-wind checkpoint chain.
func (vm *VM) Winder() *handler.Winder { return vm.winder }

// GCRoots marks the operand stack and every activation record's context
// chain, satisfying heap.RootSource. The handler stack and the winder are
// separate RootSources the caller should also pass to heap.Heap.Collect.
func (vm *VM) GCRoots(mark func(heap.Value)) {
	for _, v := range vm.data {
		mark(v)
	}
	for _, c := range vm.calls {
		for ctx := c.ctx; ctx != nil; ctx = ctx.Up {
			for _, v := range ctx.Regs {
				mark(v)
			}
		}
	}
}

// Collect runs a full collection, gathering roots from the VM itself plus
// its handler stack and dynamic-wind winder.
func (vm *VM) Collect() {
	vm.h.Collect(vm, vm.handlers, vm.winder)
}

// Invoke calls proc (which must be a Proc Value) with args, satisfying
// handler.Invoker. Used by the handler stack to run an installed exception
// handler, and generally available to native procedures that need to call
// back into Scheme code (map, for-each, apply, sort's comparator, ...).
func (vm *VM) Invoke(proc heap.Value, args []heap.Value) (heap.Value, error) {
	p, err := asProc(proc)
	if err != nil {
		return heap.Value{}, err
	}
	return vm.invokeProc(p, args)
}

// Call is the typed convenience form of Invoke for Go callers that already
// hold a *heap.Proc.
func (vm *VM) Call(proc *heap.Proc, args []heap.Value) (heap.Value, error) {
	return vm.invokeProc(proc, args)
}

func asProc(v heap.Value) (*heap.Proc, error) {
	if !v.IsObject() {
		return nil, ErrNotApplicable
	}
	p, ok := v.Obj().(*heap.Proc)
	if !ok {
		return nil, ErrNotApplicable
	}
	return p, nil
}

func (vm *VM) push(v heap.Value) { vm.data = append(vm.data, v) }

func (vm *VM) pop() heap.Value {
	n := len(vm.data) - 1
	v := vm.data[n]
	vm.data = vm.data[:n]
	return v
}

func (vm *VM) popN(n int) []heap.Value {
	if n == 0 {
		return nil
	}
	start := len(vm.data) - n
	args := make([]heap.Value, n)
	copy(args, vm.data[start:])
	vm.data = vm.data[:start]
	return args
}

// buildCallContext allocates the register context for one call to proc,
// binding args to its formal parameters (collecting the tail into a list
// for a variadic procedure) and padding any remaining local slots with the
// unspecified value.
func (vm *VM) buildCallContext(proc *heap.Proc, args []heap.Value) (*heap.Context, error) {
	rep := proc.Irep
	fixed := rep.Argc
	if rep.Variadic {
		fixed--
	}
	if rep.Variadic {
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: %s wants at least %d arguments, got %d", ErrBadArity, proc.Name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: %s wants %d arguments, got %d", ErrBadArity, proc.Name, fixed, len(args))
	}

	ctx := vm.h.NewContext(rep.Localc, proc.Ctx)
	copy(ctx.Regs, args[:fixed])
	if rep.Variadic {
		rest := heap.Nil()
		for i := len(args) - 1; i >= fixed; i-- {
			rest = heap.FromObject(vm.h.Cons(args[i], rest))
		}
		ctx.Regs[fixed] = rest
	}
	return ctx, nil
}

func (vm *VM) invokeProc(proc *heap.Proc, args []heap.Value) (heap.Value, error) {
	if proc.IsNative() {
		return proc.Native(vm, args)
	}
	stopDepth := len(vm.calls)
	ctx, err := vm.buildCallContext(proc, args)
	if err != nil {
		return heap.Value{}, err
	}
	vm.calls = append(vm.calls, callInfo{irep: proc.Irep, pc: 0, ctx: ctx})
	return vm.run(stopDepth)
}

// run executes instructions until the call stack unwinds back down to
// stopDepth, at which point the value left on top of the operand stack is
// the call's result.
func (vm *VM) run(stopDepth int) (heap.Value, error) {
	for {
		if len(vm.calls) == stopDepth {
			return vm.pop(), nil
		}
		idx := len(vm.calls) - 1
		frame := &vm.calls[idx]
		code := frame.irep.Code
		op := Opcode(code[frame.pc])

		var operand0, operand1 int32
		switch op.Operands() {
		case 1:
			operand0 = readOperand(code, frame.pc+1)
		case 2:
			operand0 = readOperand(code, frame.pc+1)
			operand1 = readOperand(code, frame.pc+5)
		}
		advance := op.InstrSize()

		switch op {
		case OpNOP:
			frame.pc += advance

		case OpPOP:
			vm.pop()
			frame.pc += advance

		case OpPUSHUNDEF:
			vm.push(heap.Undef())
			frame.pc += advance
		case OpPUSHNIL:
			vm.push(heap.Nil())
			frame.pc += advance
		case OpPUSHTRUE:
			vm.push(heap.Bool(true))
			frame.pc += advance
		case OpPUSHFALSE:
			vm.push(heap.Bool(false))
			frame.pc += advance
		case OpPUSHEOF:
			vm.push(heap.EOFObject())
			frame.pc += advance
		case OpPUSHINT:
			vm.push(heap.Int(int(frame.irep.Ints[operand0])))
			frame.pc += advance
		case OpPUSHFLOAT:
			vm.push(heap.Float(frame.irep.Doubles[operand0]))
			frame.pc += advance
		case OpPUSHCHAR:
			vm.push(heap.Char(byte(operand0)))
			frame.pc += advance
		case OpPUSHCONST:
			vm.push(frame.irep.Pool[operand0])
			frame.pc += advance

		case OpGREF:
			sym := frame.irep.Pool[operand0].Obj().(*heap.Symbol)
			v, ok := vm.h.Globals().Map[sym]
			if !ok {
				return heap.Value{}, fmt.Errorf("%w: %s", ErrUnboundGlobal, sym.Name)
			}
			vm.push(v)
			frame.pc += advance
		case OpGSET:
			sym := frame.irep.Pool[operand0].Obj().(*heap.Symbol)
			vm.h.Globals().Map[sym] = vm.pop()
			vm.push(heap.Undef())
			frame.pc += advance

		case OpLREF:
			vm.push(frame.ctx.Regs[operand0])
			frame.pc += advance
		case OpLSET:
			frame.ctx.Regs[operand0] = vm.pop()
			vm.push(heap.Undef())
			frame.pc += advance

		case OpCREF:
			target, err := climbContext(frame.ctx.Up, int(operand0))
			if err != nil {
				return heap.Value{}, err
			}
			vm.push(target.Regs[operand1])
			frame.pc += advance
		case OpCSET:
			target, err := climbContext(frame.ctx.Up, int(operand0))
			if err != nil {
				return heap.Value{}, err
			}
			target.Regs[operand1] = vm.pop()
			vm.push(heap.Undef())
			frame.pc += advance

		case OpJMP:
			frame.pc = int(operand0)
		case OpJMPIF:
			if vm.pop().Truthy() {
				frame.pc = int(operand0)
			} else {
				frame.pc += advance
			}
		case OpNOT:
			vm.push(heap.Bool(!vm.pop().Truthy()))
			frame.pc += advance

		case OpLAMBDA:
			child := frame.irep.Children[operand0]
			proc := vm.h.NewClosure("", child, frame.ctx)
			vm.push(heap.FromObject(proc))
			frame.pc += advance

		case OpCONS:
			b, a := vm.pop(), vm.pop()
			vm.push(heap.FromObject(vm.h.Cons(a, b)))
			frame.pc += advance
		case OpCAR:
			p, err := asPair(vm.pop())
			if err != nil {
				return heap.Value{}, err
			}
			vm.push(p.Car)
			frame.pc += advance
		case OpCDR:
			p, err := asPair(vm.pop())
			if err != nil {
				return heap.Value{}, err
			}
			vm.push(p.Cdr)
			frame.pc += advance
		case OpNILP:
			vm.push(heap.Bool(vm.pop().IsNil()))
			frame.pc += advance
		case OpSYMBOLP:
			v := vm.pop()
			_, ok := symbolOf(v)
			vm.push(heap.Bool(ok))
			frame.pc += advance
		case OpPAIRP:
			v := vm.pop()
			_, ok := v.Obj().(*heap.Pair)
			vm.push(heap.Bool(v.IsObject() && ok))
			frame.pc += advance

		case OpADD, OpSUB, OpMUL, OpDIV:
			b, a := vm.pop(), vm.pop()
			r, err := arith(op, a, b)
			if err != nil {
				return heap.Value{}, err
			}
			vm.push(r)
			frame.pc += advance

		case OpEQ, OpLT, OpLE, OpGT, OpGE:
			b, a := vm.pop(), vm.pop()
			r, err := compare(op, a, b)
			if err != nil {
				return heap.Value{}, err
			}
			vm.push(heap.Bool(r))
			frame.pc += advance

		case OpCALL:
			argc := int(operand0)
			frame.pc += advance
			if err := vm.doCall(argc, false); err != nil {
				return heap.Value{}, err
			}

		case OpTAILCALL:
			argc := int(operand0)
			frame.pc += advance
			if err := vm.doCall(argc, true); err != nil {
				return heap.Value{}, err
			}

		case OpRET, OpSTOP:
			vm.calls = vm.calls[:idx]

		default:
			return heap.Value{}, fmt.Errorf("%w: %d", ErrInvalidOpcode, op)
		}
	}
}

// doCall implements both CALL and TAILCALL: pop argc arguments and a
// callee, then either invoke a native function directly, push a new
// activation record (CALL), or replace the current one in place (TAILCALL,
// which is what keeps iterative tail recursion from growing the call
// stack).
func (vm *VM) doCall(argc int, tail bool) error {
	args := vm.popN(argc)
	callee := vm.pop()
	proc, err := asProc(callee)
	if err != nil {
		return err
	}

	if proc.IsNative() {
		result, err := proc.Native(vm, args)
		if err != nil {
			return err
		}
		if tail {
			vm.calls = vm.calls[:len(vm.calls)-1]
		}
		vm.push(result)
		return nil
	}

	ctx, err := vm.buildCallContext(proc, args)
	if err != nil {
		return err
	}
	if tail {
		vm.calls[len(vm.calls)-1] = callInfo{irep: proc.Irep, pc: 0, ctx: ctx}
	} else {
		vm.calls = append(vm.calls, callInfo{irep: proc.Irep, pc: 0, ctx: ctx})
	}
	return nil
}

func climbContext(start *heap.Context, depth int) (*heap.Context, error) {
	c := start
	for i := 0; i < depth; i++ {
		if c == nil {
			return nil, ErrUnboundCaptured
		}
		c = c.Up
	}
	if c == nil {
		return nil, ErrUnboundCaptured
	}
	return c, nil
}

func asPair(v heap.Value) (*heap.Pair, error) {
	if v.IsObject() {
		if p, ok := v.Obj().(*heap.Pair); ok {
			return p, nil
		}
	}
	return nil, ErrNotAPair
}

func symbolOf(v heap.Value) (*heap.Symbol, bool) {
	if !v.IsObject() {
		return nil, false
	}
	s, ok := v.Obj().(*heap.Symbol)
	return s, ok
}
