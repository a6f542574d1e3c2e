// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package write

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/probechain/ilisp/lang/heap"
)

func itoa(n int) string { return strconv.Itoa(n) }

// formatFloat renders f the way the reader can parse back: signed
// infinities and NaN use the +inf.0/-inf.0/+nan.0 tokens, and any other
// value is guaranteed to contain a '.' or exponent marker so the reader's
// number classifier (parseNumber) treats it as a float rather than an int.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf.0"
	case math.IsInf(f, -1):
		return "-inf.0"
	case math.IsNaN(f):
		return "+nan.0"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// charNamesRev is the inverse of reader.charNames, used to print the long
// form (#\newline) instead of the raw byte for the characters that have
// one.
var charNamesRev = map[byte]string{
	7:   "alarm",
	8:   "backspace",
	127: "delete",
	27:  "escape",
	10:  "newline",
	0:   "null",
	13:  "return",
	32:  "space",
	9:   "tab",
}

func (p *printer) printChar(c byte) {
	if p.display {
		p.writeString(string(rune(c)))
		return
	}
	if name, ok := charNamesRev[c]; ok {
		p.writeString("#\\" + name)
		return
	}
	p.writeString("#\\" + string(rune(c)))
}

func (p *printer) printString(s *heap.Str) {
	data := s.Bytes()
	if p.display {
		p.writeString(string(data))
		return
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range data {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case 7:
			b.WriteString(`\a`)
		case 8:
			b.WriteString(`\b`)
		case 9:
			b.WriteString(`\t`)
		case 10:
			b.WriteString(`\n`)
		case 13:
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	p.writeString(b.String())
}

// symbolNeedsPipes reports whether name can only round-trip through the
// reader's |...| quoted-symbol syntax: it is empty, starts like a number,
// or contains a character the bare-symbol lexer treats as a delimiter.
func symbolNeedsPipes(name string) bool {
	if name == "" {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch c {
		case '(', ')', ';', '"', '|', ' ', '\t', '\n', '\r', '#', '\'', '`', ',':
			return true
		}
	}
	if _, ok := parseNumberLike(name); ok {
		return true
	}
	return false
}

// parseNumberLike reports whether name starts the way a number token does
// (a digit, or a sign followed by more characters), so that the reader
// would hand it to readNumberOrSymbol. This is broader than what that
// function classifies as a number: names such as -x are reported too and
// so are written with pipes.
func parseNumberLike(name string) (struct{}, bool) {
	if name == "" {
		return struct{}{}, false
	}
	c := name[0]
	if c >= '0' && c <= '9' {
		return struct{}{}, true
	}
	if (c == '+' || c == '-') && len(name) > 1 {
		return struct{}{}, true
	}
	return struct{}{}, false
}

func (p *printer) printSymbol(sym *heap.Symbol) {
	if !symbolNeedsPipes(sym.Name) {
		p.writeString(sym.Name)
		return
	}
	var b strings.Builder
	b.WriteByte('|')
	for i := 0; i < len(sym.Name); i++ {
		c := sym.Name[i]
		if c == '|' || c == '\\' {
			b.WriteString(`\x`)
			b.WriteString(strconv.FormatInt(int64(c), 16))
			b.WriteByte(';')
			continue
		}
		b.WriteByte(c)
	}
	b.WriteByte('|')
	p.writeString(b.String())
}

// unreadableOf formats a non-literal heap object the way most Scheme
// writers do for procedures, ports, and other runtime-only values: a
// "#<...>" tag that display and write both use since there's no literal
// syntax to round-trip through.
func unreadableOf(obj heap.Object) string {
	switch t := obj.(type) {
	case *heap.Proc:
		name := t.Name
		if name == "" {
			name = "anonymous"
		}
		kind := "compound"
		if t.IsNative() {
			kind = "native"
		}
		return fmt.Sprintf("#<procedure %s:%s>", kind, name)
	case *heap.Port:
		return fmt.Sprintf("#<port %s>", t.Name)
	case *heap.ErrorObj:
		return fmt.Sprintf("#<error %s: %s>", t.Type.Name, t.Message)
	case *heap.Record:
		return "#<record>"
	case *heap.Dict:
		return "#<dictionary>"
	case *heap.Weak:
		return "#<weak-table>"
	case *heap.Env:
		return fmt.Sprintf("#<environment %s>", t.Library)
	default:
		return fmt.Sprintf("#<%s>", obj.Header().Tag())
	}
}
