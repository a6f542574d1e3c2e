// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package write implements the two standard Scheme output procedures —
// write (machine-readable, round-trippable through package reader) and
// display (human-readable) — plus the cycle and shared-structure detection
// that emits #n=/#n# datum labels, the writer-side counterpart of the
// reader's label machinery.
package write

import (
	"bytes"
	"io"

	"github.com/probechain/ilisp/lang/heap"
)

// Write renders v to w in machine-readable form: strings are quoted and
// escaped, characters use #\name syntax, and shared or cyclic pair/vector
// structure is emitted with #n=/#n# labels so the result can be read back
// by package reader into an equal (for acyclic data) or structurally
// equivalent (for cyclic data) Value.
func Write(w io.Writer, v heap.Value) error {
	return render(w, v, false)
}

// Display renders v to w in human-readable form: strings and characters
// are written as their raw content with no quoting or escaping. Shared and
// cyclic structure is still labeled, since display must also terminate on
// cyclic input.
func Display(w io.Writer, v heap.Value) error {
	return render(w, v, true)
}

// String is a convenience wrapper returning Write's output as a string,
// used by error messages and the REPL's result banner.
func String(v heap.Value) string {
	var buf bytes.Buffer
	_ = Write(&buf, v)
	return buf.String()
}

// DisplayString is String's Display-mode counterpart.
func DisplayString(v heap.Value) string {
	var buf bytes.Buffer
	_ = Display(&buf, v)
	return buf.String()
}

func render(w io.Writer, v heap.Value, display bool) error {
	shared := make(map[heap.Object]bool)
	scan(v, make(map[heap.Object]int), shared)

	p := &printer{
		buf:     bufWriter{w},
		display: display,
		shared:  shared,
		labelOf: make(map[heap.Object]int),
		printed: make(map[heap.Object]bool),
		next:    1,
	}
	p.print(v)
	return p.err
}

// scan is the pre-pass that finds every pair/vector reachable more than
// once from v (whether genuinely shared or part of a cycle), recording it
// in shared. counts is scratch state for the single scan call; a count
// that reaches 1 triggers descent into the object's children exactly once,
// which is what keeps a cyclic structure from recursing forever here.
func scan(v heap.Value, counts map[heap.Object]int, shared map[heap.Object]bool) {
	if !v.IsObject() {
		return
	}
	obj := v.Obj()
	if obj == nil {
		return
	}
	switch t := obj.(type) {
	case *heap.Pair:
		counts[obj]++
		if counts[obj] > 1 {
			shared[obj] = true
			return
		}
		scan(t.Car, counts, shared)
		scan(t.Cdr, counts, shared)
	case *heap.Vector:
		counts[obj]++
		if counts[obj] > 1 {
			shared[obj] = true
			return
		}
		for _, e := range t.Elems {
			scan(e, counts, shared)
		}
	}
}

// bufWriter wraps the destination io.Writer for printer. The first write
// error is captured in printer.err by writeString rather than threaded
// through every call site.
type bufWriter struct {
	io.Writer
}

type printer struct {
	buf     bufWriter
	display bool
	shared  map[heap.Object]bool
	labelOf map[heap.Object]int
	printed map[heap.Object]bool
	next    int
	err     error
}

func (p *printer) writeString(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.buf.Writer, s)
}

// print renders v, handling the #n=/#n# label protocol for any pair or
// vector object flagged as shared by the pre-pass scan.
func (p *printer) print(v heap.Value) {
	if p.err != nil {
		return
	}
	if v.IsObject() {
		if obj := v.Obj(); obj != nil && p.shared[obj] {
			if p.printed[obj] {
				id := p.labelOf[obj]
				p.writeString(labelRef(id))
				return
			}
			id := p.next
			p.next++
			p.labelOf[obj] = id
			p.printed[obj] = true
			p.writeString(labelDef(id))
			p.printValue(v)
			return
		}
	}
	p.printValue(v)
}

func labelDef(id int) string { return "#" + itoa(id) + "=" }
func labelRef(id int) string { return "#" + itoa(id) + "#" }

func (p *printer) printValue(v heap.Value) {
	switch v.Tag() {
	case heap.TagNil:
		p.writeString("()")
	case heap.TagUndef:
		p.writeString("#<unspecified>")
	case heap.TagEOF:
		p.writeString("#<eof>")
	case heap.TagBool:
		if v.AsBool() {
			p.writeString("#t")
		} else {
			p.writeString("#f")
		}
	case heap.TagInt:
		p.writeString(itoa(v.AsInt()))
	case heap.TagFloat:
		p.writeString(formatFloat(v.AsFloat()))
	case heap.TagChar:
		p.printChar(v.AsChar())
	case heap.TagObject:
		p.printObject(v.Obj())
	}
}

func (p *printer) printObject(obj heap.Object) {
	switch t := obj.(type) {
	case *heap.Pair:
		p.printList(t)
	case *heap.Vector:
		p.printVector(t)
	case *heap.Blob:
		p.printBlob(t)
	case *heap.Str:
		p.printString(t)
	case *heap.Symbol:
		p.printSymbol(t)
	default:
		p.writeString(unreadableOf(obj))
	}
}

// printList renders a Pair as a flat "(a b c)" for as long as the cdr
// chain is made of not-yet-printed, non-shared pairs; it falls back to
// ". tail" dotted-pair notation the moment it meets anything else —
// including, crucially, a shared pair that is already mid-print, which is
// exactly how a self-referential list like #1=(a . #1#) terminates instead
// of looping forever.
func (p *printer) printList(head *heap.Pair) {
	p.writeString("(")
	cur := head
	first := true
	for {
		if !first {
			p.writeString(" ")
		}
		first = false
		p.print(cur.Car)

		cdr := cur.Cdr
		if cdr.IsNil() {
			break
		}
		if cdr.IsObject() {
			if next, ok := cdr.Obj().(*heap.Pair); ok && !p.shared[next] {
				cur = next
				continue
			}
		}
		p.writeString(" . ")
		p.print(cdr)
		break
	}
	p.writeString(")")
}

func (p *printer) printVector(vec *heap.Vector) {
	p.writeString("#(")
	for i, e := range vec.Elems {
		if i > 0 {
			p.writeString(" ")
		}
		p.print(e)
	}
	p.writeString(")")
}

func (p *printer) printBlob(b *heap.Blob) {
	p.writeString("#u8(")
	for i, bt := range b.Data {
		if i > 0 {
			p.writeString(" ")
		}
		p.writeString(itoa(int(bt)))
	}
	p.writeString(")")
}
