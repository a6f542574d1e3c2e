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

	"github.com/probechain/ilisp/lang/heap"
)

// Disassemble returns a human-readable listing of rep's instruction stream,
// one line per instruction with its byte offset, mnemonic, and operands.
// Nested lambda bodies (rep.Children) are not expanded here; callers that
// want a full listing call Disassemble recursively over them.
func Disassemble(rep *heap.Irep) string {
	return disassembleCode(rep.Code)
}

func disassembleCode(code []byte) string {
	out := ""
	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		line := fmt.Sprintf("[%04d] %s", pc, op)
		switch op.Operands() {
		case 1:
			line += fmt.Sprintf(" %d", readOperand(code, pc+1))
		case 2:
			line += fmt.Sprintf(" %d %d", readOperand(code, pc+1), readOperand(code, pc+5))
		}
		out += line + "\n"
		pc += op.InstrSize()
	}
	return out
}
