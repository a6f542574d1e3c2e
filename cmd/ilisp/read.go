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
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/reader"
	"github.com/probechain/ilisp/lang/vm"
	"github.com/probechain/ilisp/lang/write"
)

var readCommand = cli.Command{
	Name:      "read",
	Usage:     "parse S-expressions and re-print them",
	ArgsUsage: "[file]",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "display", Usage: "use display instead of write"},
	},
	Action: runRead,
}

func runRead(c *cli.Context) error {
	var src io.Reader = os.Stdin
	name := "<stdin>"
	if path := c.Args().First(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
		name = path
	}

	h := heap.Open()
	r := reader.New(src, name)
	display := c.Bool("display")

	for {
		v, err := r.Read(h)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if v.Tag() == heap.TagEOF {
			return nil
		}
		tracef("read %s: %s", r.Position(), vm.DumpValue(v))
		if display {
			fmt.Println(write.DisplayString(v))
		} else {
			fmt.Println(write.String(v))
		}
	}
}
