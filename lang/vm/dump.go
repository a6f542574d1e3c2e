// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/probechain/ilisp/lang/heap"
)

// dumpConfig differs from spew's default config in a two-space indent, no
// slice capacities, and above all no pointer addresses, which are
// meaningless noise in a -trace dump and would make two structurally
// identical dumps differ run to run.
var dumpConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// DumpValue renders v as a recursive structure dump for -trace diagnostics,
// the bytecode VM's equivalent of the reference Disassemble routine for
// flat code: here the subject is a live heap object graph, which may
// contain cycles (a pair built by a datum label, a closure capturing its
// own Proc). spew's cycle detection keeps this from looping forever the way
// a naive %#v dump would.
func DumpValue(v heap.Value) string {
	if !v.IsObject() {
		return dumpConfig.Sdump(v)
	}
	return dumpConfig.Sdump(v.Obj())
}
