// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package vm implements the bytecode virtual machine: a call-info stack of
// activation records over heap-resident register contexts, an explicit
// operand stack, closures with lexical upvalue capture, and tail calls that
// reuse the current activation record instead of growing the call stack.
package vm

// Opcode identifies one bytecode instruction.
type Opcode uint8

const (
	OpNOP Opcode = iota
	OpPOP

	OpPUSHUNDEF
	OpPUSHNIL
	OpPUSHTRUE
	OpPUSHFALSE
	OpPUSHINT
	OpPUSHFLOAT
	OpPUSHCHAR
	OpPUSHEOF
	OpPUSHCONST

	OpGREF
	OpGSET
	OpLREF
	OpLSET
	OpCREF
	OpCSET

	OpJMP
	OpJMPIF
	OpNOT

	OpCALL
	OpTAILCALL
	OpRET

	OpLAMBDA

	OpCONS
	OpCAR
	OpCDR
	OpNILP
	OpSYMBOLP
	OpPAIRP

	OpADD
	OpSUB
	OpMUL
	OpDIV

	OpEQ
	OpLT
	OpLE
	OpGT
	OpGE

	OpSTOP

	opcodeCount
)

// opcodeInfo describes one opcode's mnemonic and its number of int32
// operands, each encoded as 4 little-endian bytes immediately following the
// opcode byte.
type opcodeInfo struct {
	name     string
	operands int
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpNOP:  {"nop", 0},
	OpPOP:  {"pop", 0},

	OpPUSHUNDEF: {"push.undef", 0},
	OpPUSHNIL:   {"push.nil", 0},
	OpPUSHTRUE:  {"push.true", 0},
	OpPUSHFALSE: {"push.false", 0},
	OpPUSHINT:   {"push.int", 1},
	OpPUSHFLOAT: {"push.float", 1},
	OpPUSHCHAR:  {"push.char", 1},
	OpPUSHEOF:   {"push.eof", 0},
	OpPUSHCONST: {"push.const", 1},

	OpGREF: {"gref", 1},
	OpGSET: {"gset", 1},
	OpLREF: {"lref", 1},
	OpLSET: {"lset", 1},
	OpCREF: {"cref", 2},
	OpCSET: {"cset", 2},

	OpJMP:   {"jmp", 1},
	OpJMPIF: {"jmpif", 1},
	OpNOT:   {"not", 0},

	OpCALL:     {"call", 1},
	OpTAILCALL: {"tailcall", 1},
	OpRET:      {"ret", 0},

	OpLAMBDA: {"lambda", 1},

	OpCONS:    {"cons", 0},
	OpCAR:     {"car", 0},
	OpCDR:     {"cdr", 0},
	OpNILP:    {"nil?", 0},
	OpSYMBOLP: {"symbol?", 0},
	OpPAIRP:   {"pair?", 0},

	OpADD: {"add", 0},
	OpSUB: {"sub", 0},
	OpMUL: {"mul", 0},
	OpDIV: {"div", 0},

	OpEQ: {"eq", 0},
	OpLT: {"lt", 0},
	OpLE: {"le", 0},
	OpGT: {"gt", 0},
	OpGE: {"ge", 0},

	OpSTOP: {"stop", 0},
}

// String returns op's mnemonic.
func (op Opcode) String() string {
	if int(op) >= len(opcodeTable) {
		return "invalid"
	}
	return opcodeTable[op].name
}

// Operands reports how many int32 operands follow op in the instruction
// stream.
func (op Opcode) Operands() int {
	if int(op) >= len(opcodeTable) {
		return 0
	}
	return opcodeTable[op].operands
}

// InstrSize returns the total byte length of an instruction for op,
// including its opcode byte.
func (op Opcode) InstrSize() int { return 1 + op.Operands()*4 }
