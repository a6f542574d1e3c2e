// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import "github.com/probechain/ilisp/lang/heap"

// arith evaluates one of ADD/SUB/MUL/DIV over two numeric Values, staying
// in int arithmetic when both operands are ints and promoting to float
// otherwise.
func arith(op Opcode, a, b heap.Value) (heap.Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return heap.Value{}, ErrNotANumber
	}
	if a.IsInt() && b.IsInt() {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case OpADD:
			return heap.Int(x + y), nil
		case OpSUB:
			return heap.Int(x - y), nil
		case OpMUL:
			return heap.Int(x * y), nil
		case OpDIV:
			if y == 0 {
				return heap.Value{}, ErrDivisionByZero
			}
			if x%y == 0 {
				return heap.Int(x / y), nil
			}
			return heap.Float(float64(x) / float64(y)), nil
		}
	}

	x, y := a.NumberToFloat(), b.NumberToFloat()
	switch op {
	case OpADD:
		return heap.Float(x + y), nil
	case OpSUB:
		return heap.Float(x - y), nil
	case OpMUL:
		return heap.Float(x * y), nil
	case OpDIV:
		if y == 0 {
			return heap.Value{}, ErrDivisionByZero
		}
		return heap.Float(x / y), nil
	}
	return heap.Value{}, ErrInvalidOpcode
}

// compare evaluates one of EQ/LT/LE/GT/GE over two numeric Values. EQ here
// is numeric equality (Scheme's `=`), distinct from heap.Eq.
func compare(op Opcode, a, b heap.Value) (bool, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return false, ErrNotANumber
	}
	if a.IsInt() && b.IsInt() {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case OpEQ:
			return x == y, nil
		case OpLT:
			return x < y, nil
		case OpLE:
			return x <= y, nil
		case OpGT:
			return x > y, nil
		case OpGE:
			return x >= y, nil
		}
	}
	x, y := a.NumberToFloat(), b.NumberToFloat()
	switch op {
	case OpEQ:
		return x == y, nil
	case OpLT:
		return x < y, nil
	case OpLE:
		return x <= y, nil
	case OpGT:
		return x > y, nil
	case OpGE:
		return x >= y, nil
	}
	return false, ErrInvalidOpcode
}
