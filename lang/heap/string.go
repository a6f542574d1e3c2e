// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package heap

import "github.com/probechain/ilisp/lang/rope"

// NewString allocates a STRING object wrapping a fresh rope over data.
func (h *Heap) NewString(data []byte) *Str {
	obj := h.Alloc(TagString, 1, func(hdr *Header) Object {
		return &Str{Header: *hdr, Rope: rope.Make(data)}
	})
	return obj.(*Str)
}

// NewStringRope allocates a STRING object wrapping an existing rope r,
// taking ownership of it (r must not be reused by the caller afterwards
// without retaining it separately).
func (h *Heap) NewStringRope(r *rope.Rope) *Str {
	obj := h.Alloc(TagString, 1, func(hdr *Header) Object {
		return &Str{Header: *hdr, Rope: r}
	})
	return obj.(*Str)
}

// Len reports the string's length in bytes.
func (s *Str) Len() int { return s.Rope.Weight() }

// Bytes materializes s's contents into a fresh slice.
func (s *Str) Bytes() []byte { return rope.Bytes(s.Rope) }

func ropeEqual(a, b *Str) bool { return rope.Equal(a.Rope, b.Rope) }
