// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package heap

import "golang.org/x/crypto/sha3"

// Intern returns the unique *Symbol for name, allocating and registering a
// new one on first use. Because interning always returns the same pointer
// for the same name, symbol comparison is eq?.
func (h *Heap) Intern(name string) *Symbol {
	if s, ok := h.symtab[name]; ok {
		return s
	}
	digest := sha3.Sum256([]byte(name))
	obj := h.Alloc(TagSymbol, 1, func(hdr *Header) Object {
		return &Symbol{Header: *hdr, Name: name, Digest: digest}
	})
	sym := obj.(*Symbol)
	h.symtab[name] = sym
	return sym
}

// Lookup returns the interned symbol named name, if any has been interned,
// without creating one.
func (h *Heap) Lookup(name string) (*Symbol, bool) {
	s, ok := h.symtab[name]
	return s, ok
}

// SymbolCount reports how many symbols are currently interned, exposed for
// tests that check sweep correctly prunes unreachable symbols.
func (h *Heap) SymbolCount() int { return len(h.symtab) }
