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
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/ilisp/lang/builtin"
	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/reader"
	"github.com/probechain/ilisp/lang/vm"
	"github.com/probechain/ilisp/lang/write"
)

var replCommand = cli.Command{
	Name:  "repl",
	Usage: "interactive read-eval-print loop",
	Action: func(c *cli.Context) error {
		return runRepl()
	},
}

var (
	promptColor = color.New(color.FgCyan).SprintFunc()
	errorColor  = color.New(color.FgRed).SprintFunc()
	resultColor = color.New(color.FgGreen).SprintFunc()
)

// runRepl drives an interactive read-eval-print loop: peterh/liner supplies
// line editing and history the way go-probe's own JS console does, and
// fatih/color distinguishes the prompt, result, and error banners.
// Each session gets a UUID, shown in the startup banner and in -trace
// output, the same role the
// reference runtime's dynamic-wind checkpoint identifiers play for
// debug-only correlation.
func runRepl() error {
	session := uuid.New().String()
	tracef("repl session %s starting", session)

	h := heap.Open()
	if err := builtin.Install(h); err != nil {
		return err
	}
	m := vm.New(h)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Printf("ilisp %s (session %s)\n", version, session)
	for {
		text, err := line.Prompt(promptColor("ilisp> "))
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		line.AppendHistory(text)

		r := reader.NewFromBytes([]byte(text), "<repl>")
		if err := evalLine(m, r); err != nil {
			fmt.Println(errorColor(err.Error()))
		}
	}
}

// evalLine reads and evaluates every top-level datum on one line of input,
// printing each result, so a line like "(+ 1 2) (+ 3 4)" echoes two values.
func evalLine(m *vm.VM, r *reader.Reader) error {
	for {
		v, err := r.Read(m.Heap())
		if err != nil {
			return err
		}
		if v.Tag() == heap.TagEOF {
			return nil
		}
		result, err := evalTop(m, v)
		if err != nil {
			return err
		}
		fmt.Println(resultColor(write.String(result)))
	}
}
