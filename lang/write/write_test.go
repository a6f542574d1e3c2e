// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package write_test

import (
	"testing"

	"github.com/probechain/ilisp/lang/heap"
	"github.com/probechain/ilisp/lang/reader"
	"github.com/probechain/ilisp/lang/write"
)

func roundTrip(t *testing.T, h *heap.Heap, src string) (heap.Value, string) {
	t.Helper()
	r := reader.NewFromBytes([]byte(src), "test")
	v, err := r.Read(h)
	if err != nil {
		t.Fatalf("Read(%q): %v", src, err)
	}
	return v, write.String(v)
}

func TestWriteScalars(t *testing.T) {
	h := heap.Open()
	cases := map[string]string{
		"42":       "42",
		"-7":       "-7",
		"#t":       "#t",
		"#f":       "#f",
		"foo":      "foo",
		`"a\nb"`:   `"a\nb"`,
		`#\space`:  `#\space`,
		`#\a`:      `#\a`,
		"()":       "()",
		"(1 2 3)":  "(1 2 3)",
		"(1 . 2)":  "(1 . 2)",
		"#(1 2 3)": "#(1 2 3)",
	}
	for src, want := range cases {
		_, got := roundTrip(t, h, src)
		if got != want {
			t.Errorf("write(read(%q)) = %q, want %q", src, got, want)
		}
	}
}

func TestWriteCyclicPairEmitsLabel(t *testing.T) {
	h := heap.Open()
	_, out := roundTrip(t, h, "#1=(a . #1#)")
	if out != "#1=(a . #1#)" {
		t.Fatalf("got %q, want #1=(a . #1#)", out)
	}
}

func TestWriteRoundTripsThroughReader(t *testing.T) {
	h := heap.Open()
	v, out := roundTrip(t, h, "#1=(a . #1#)")

	r2 := reader.NewFromBytes([]byte(out), "roundtrip")
	v2, err := r2.Read(h)
	if err != nil {
		t.Fatalf("re-reading writer output: %v", err)
	}
	p1 := v.Obj().(*heap.Pair)
	p2 := v2.Obj().(*heap.Pair)
	if p1.Car.Obj().(*heap.Symbol) != p2.Car.Obj().(*heap.Symbol) {
		t.Fatalf("expected same interned symbol for 'a' on both sides")
	}
	if p2.Cdr.Obj().(*heap.Pair) != p2 {
		t.Fatalf("re-read structure should still be cyclic")
	}
}

func TestDisplayOmitsStringQuoting(t *testing.T) {
	h := heap.Open()
	r := reader.NewFromBytes([]byte(`"hi"`), "test")
	v, err := r.Read(h)
	if err != nil {
		t.Fatal(err)
	}
	if got := write.DisplayString(v); got != "hi" {
		t.Fatalf("display = %q, want hi", got)
	}
	if got := write.String(v); got != `"hi"` {
		t.Fatalf("write = %q, want \"hi\"", got)
	}
}

func TestWriteSharedVector(t *testing.T) {
	h := heap.Open()
	_, out := roundTrip(t, h, "(#1=#(1 2) #1#)")
	if out != "(#1=#(1 2) #1#)" {
		t.Fatalf("got %q", out)
	}
}
