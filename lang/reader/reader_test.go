// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package reader_test

import (
	"testing"

	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/reader"
)

func readOne(t *testing.T, h *heap.Heap, src string) heap.Value {
	t.Helper()
	r := reader.NewFromBytes([]byte(src), "test")
	v, err := r.Read(h)
	if err != nil {
		t.Fatalf("Read(%q): %v", src, err)
	}
	return v
}

func TestReadSimpleAtoms(t *testing.T) {
	h := heap.Open()

	if v := readOne(t, h, "42"); !v.IsInt() || v.AsInt() != 42 {
		t.Fatalf("expected int 42, got %#v", v)
	}
	if v := readOne(t, h, "-7"); !v.IsInt() || v.AsInt() != -7 {
		t.Fatalf("expected int -7, got %#v", v)
	}
	if v := readOne(t, h, "3.5"); !v.IsFloat() || v.AsFloat() != 3.5 {
		t.Fatalf("expected float 3.5, got %#v", v)
	}
	if v := readOne(t, h, "#t"); !v.IsBool() || !v.AsBool() {
		t.Fatalf("expected #t")
	}
	if v := readOne(t, h, "#false"); !v.IsBool() || v.AsBool() {
		t.Fatalf("expected #false")
	}
	if v := readOne(t, h, "hello"); v.Obj().(*heap.Symbol).Name != "hello" {
		t.Fatalf("expected symbol hello, got %#v", v)
	}
}

func TestReadStringEscapes(t *testing.T) {
	h := heap.Open()
	v := readOne(t, h, `"a\nb\"c"`)
	s, ok := v.Obj().(*heap.Str)
	if !ok {
		t.Fatalf("expected string, got %#v", v)
	}
	if got, want := string(s.Bytes()), "a\nb\"c"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadCharacters(t *testing.T) {
	h := heap.Open()
	cases := map[string]byte{
		`#\a`:       'a',
		`#\(`:       '(',
		`#\space`:   ' ',
		`#\newline`: '\n',
		`#\tab`:     '\t',
	}
	for src, want := range cases {
		v := readOne(t, h, src)
		if !v.IsChar() || v.AsChar() != want {
			t.Fatalf("%s: got %#v, want char %d", src, v, want)
		}
	}
}

func TestReadListAndDottedPair(t *testing.T) {
	h := heap.Open()
	v := readOne(t, h, "(1 2 3)")
	p, ok := v.Obj().(*heap.Pair)
	if !ok {
		t.Fatalf("expected pair, got %#v", v)
	}
	if !p.Car.IsInt() || p.Car.AsInt() != 1 {
		t.Fatalf("car = %#v", p.Car)
	}

	dotted := readOne(t, h, "(1 . 2)")
	dp := dotted.Obj().(*heap.Pair)
	if !dp.Car.IsInt() || dp.Car.AsInt() != 1 || !dp.Cdr.IsInt() || dp.Cdr.AsInt() != 2 {
		t.Fatalf("dotted pair wrong: %#v", dp)
	}

	empty := readOne(t, h, "()")
	if !empty.IsNil() {
		t.Fatalf("expected nil for (), got %#v", empty)
	}
}

func TestReadVectorAndBytevector(t *testing.T) {
	h := heap.Open()
	v := readOne(t, h, "#(1 2 3)")
	vec, ok := v.Obj().(*heap.Vector)
	if !ok || len(vec.Elems) != 3 {
		t.Fatalf("expected 3-vector, got %#v", v)
	}

	bv := readOne(t, h, "#u8(0 255 128)")
	blob, ok := bv.Obj().(*heap.Blob)
	if !ok || len(blob.Data) != 3 || blob.Data[1] != 255 {
		t.Fatalf("bad bytevector: %#v", bv)
	}
}

func TestReadQuoteForms(t *testing.T) {
	h := heap.Open()
	v := readOne(t, h, "'foo")
	p := v.Obj().(*heap.Pair)
	if p.Car.Obj().(*heap.Symbol).Name != "quote" {
		t.Fatalf("expected quote wrapper, got %#v", v)
	}
	inner := p.Cdr.Obj().(*heap.Pair).Car
	if inner.Obj().(*heap.Symbol).Name != "foo" {
		t.Fatalf("expected foo, got %#v", inner)
	}

	qq := readOne(t, h, "`(a ,b ,@c)")
	qqp := qq.Obj().(*heap.Pair)
	if qqp.Car.Obj().(*heap.Symbol).Name != "quasiquote" {
		t.Fatalf("expected quasiquote, got %#v", qq)
	}
}

func TestDatumLabelCycle(t *testing.T) {
	h := heap.Open()
	v := readOne(t, h, "#1=(a . #1#)")
	p, ok := v.Obj().(*heap.Pair)
	if !ok {
		t.Fatalf("expected pair, got %#v", v)
	}
	if p.Car.Obj().(*heap.Symbol).Name != "a" {
		t.Fatalf("car = %#v", p.Car)
	}
	cdrPair, ok := p.Cdr.Obj().(*heap.Pair)
	if !ok || cdrPair != p {
		t.Fatalf("expected cdr to be the same pair object (cycle), got %#v", p.Cdr)
	}
}

func TestDatumLabelSharing(t *testing.T) {
	h := heap.Open()
	v := readOne(t, h, "(#1=(1 2) #1#)")
	outer := v.Obj().(*heap.Pair)
	first := outer.Car
	second := outer.Cdr.Obj().(*heap.Pair).Car
	if first.Obj() != second.Obj() {
		t.Fatalf("expected shared structure: %#v vs %#v", first, second)
	}
}

func TestUnmatchedCloseParenErrors(t *testing.T) {
	h := heap.Open()
	r := reader.NewFromBytes([]byte(")"), "test")
	if _, err := r.Read(h); err == nil {
		t.Fatalf("expected error for unmatched )")
	}
}

func TestEmptyInputReturnsEOF(t *testing.T) {
	h := heap.Open()
	v := readOne(t, h, "   \n  ; comment\n")
	if v.Tag() != heap.TagEOF {
		t.Fatalf("expected EOF marker, got %#v", v)
	}
}

func TestBlockAndDatumComments(t *testing.T) {
	h := heap.Open()
	v := readOne(t, h, "#| comment #| nested |# still |# 42")
	if !v.IsInt() || v.AsInt() != 42 {
		t.Fatalf("expected 42 after block comment, got %#v", v)
	}

	v2 := readOne(t, h, "(1 #;2 3)")
	p := v2.Obj().(*heap.Pair)
	second := p.Cdr.Obj().(*heap.Pair)
	if second.Car.AsInt() != 3 {
		t.Fatalf("expected datum comment to skip 2, got %#v", second.Car)
	}
}

func TestFoldCasePersistsAcrossReads(t *testing.T) {
	h := heap.Open()
	r := reader.NewFromBytes([]byte("#!fold-case ABC DEF"), "test")

	v1, err := r.Read(h)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if v1.Obj().(*heap.Symbol).Name != "abc" {
		t.Fatalf("expected folded abc, got %#v", v1)
	}

	v2, err := r.Read(h)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if v2.Obj().(*heap.Symbol).Name != "def" {
		t.Fatalf("expected folded def (mode persists), got %#v", v2)
	}
}

func TestSignedInfinityAndNan(t *testing.T) {
	h := heap.Open()
	if v := readOne(t, h, "+inf.0"); !v.IsFloat() || v.AsFloat() <= 1e300 {
		t.Fatalf("expected +inf.0, got %#v", v)
	}
	v := readOne(t, h, "+nan.0")
	if !v.IsFloat() || v.AsFloat() == v.AsFloat() {
		t.Fatalf("expected NaN, got %#v", v)
	}
}
