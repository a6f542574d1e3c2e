// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Command ilisp is the embedding CLI for the runtime: a read subcommand
// that parses and re-prints S-expressions, a repl subcommand that adds
// native-procedure evaluation and line editing, and a disasm subcommand
// that prints the bytecode produced by the literal assembler's bootstrap
// demo program. It plays the same role for this runtime that probec
// played for its own embedded Lisp toolchain, adopting urfave/cli in
// place of probec's bare flag package the way a top-level gprobe-style
// command does.
package main

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/urfave/cli.v1"
)

const version = "0.1.0"

// trace is the package-level diagnostic logger, written to stderr only when
// -trace is set, exactly the way pic_panic/fprintf(stderr, ...) is used for
// diagnostics in the reference C runtime: never for normal control flow.
var trace = log.New(os.Stderr, "ilisp: ", 0)

var traceEnabled bool

func main() {
	app := cli.NewApp()
	app.Name = "ilisp"
	app.Usage = "embeddable Scheme-family runtime core"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:        "trace",
			Usage:       "enable VM/GC diagnostic tracing to stderr",
			Destination: &traceEnabled,
		},
	}
	app.Commands = []cli.Command{
		readCommand,
		replCommand,
		disasmCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func tracef(format string, args ...interface{}) {
	if traceEnabled {
		trace.Printf(format, args...)
	}
}
