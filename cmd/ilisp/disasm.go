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

	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/ilisp/lang/asm"
	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/vm"
)

var disasmCommand = cli.Command{
	Name:  "disasm",
	Usage: "print the bytecode listing for the bootstrap demo program",
	Description: `Without a surface-syntax compiler there is no source file to
disassemble; this subcommand hand-assembles the same kind of literal
bytecode lang/asm's tests use (push 1, push 2, ADD, RET for (+ 1 2)) and prints
its listing, so the assembler and VM's instruction encoding can be
inspected without writing a Go test.`,
	Action: runDisasm,
}

func runDisasm(c *cli.Context) error {
	h := heap.Open()
	b := asm.New()
	one := b.AddInt(1)
	two := b.AddInt(2)
	b.Op1(vm.OpPUSHINT, one)
	b.Op1(vm.OpPUSHINT, two)
	b.Op0(vm.OpADD)
	b.Op0(vm.OpRET)

	rep, err := b.Build(h, 0, 0, 0, false)
	if err != nil {
		return err
	}
	fmt.Print(vm.Disassemble(rep))
	return nil
}
