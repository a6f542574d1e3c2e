// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package heap

import (
	"io"

	"github.com/google/uuid"
)

// Cons allocates a new pair.
func (h *Heap) Cons(car, cdr Value) *Pair {
	obj := h.Alloc(TagPair, 1, func(hdr *Header) Object {
		return &Pair{Header: *hdr, Car: car, Cdr: cdr}
	})
	return obj.(*Pair)
}

// List builds a proper list from vs, consing from the tail.
func (h *Heap) List(vs ...Value) Value {
	out := Nil()
	for i := len(vs) - 1; i >= 0; i-- {
		out = FromObject(h.Cons(vs[i], out))
	}
	return out
}

// NewVector allocates a vector of length n, all slots initialized to fill.
func (h *Heap) NewVector(n int, fill Value) *Vector {
	obj := h.Alloc(TagVector, uint32(1+n), func(hdr *Header) Object {
		elems := make([]Value, n)
		for i := range elems {
			elems[i] = fill
		}
		return &Vector{Header: *hdr, Elems: elems}
	})
	return obj.(*Vector)
}

// NewVectorFrom allocates a vector copying elems.
func (h *Heap) NewVectorFrom(elems []Value) *Vector {
	obj := h.Alloc(TagVector, uint32(1+len(elems)), func(hdr *Header) Object {
		cp := make([]Value, len(elems))
		copy(cp, elems)
		return &Vector{Header: *hdr, Elems: cp}
	})
	return obj.(*Vector)
}

// NewBlob allocates a bytevector of length n, all bytes initialized to fill.
func (h *Heap) NewBlob(n int, fill byte) *Blob {
	obj := h.Alloc(TagBlob, uint32(1+(n+7)/8), func(hdr *Header) Object {
		data := make([]byte, n)
		if fill != 0 {
			for i := range data {
				data[i] = fill
			}
		}
		return &Blob{Header: *hdr, Data: data}
	})
	return obj.(*Blob)
}

// NewDict allocates an empty dictionary.
func (h *Heap) NewDict() *Dict {
	obj := h.Alloc(TagDict, 1, func(hdr *Header) Object {
		return &Dict{Header: *hdr, Map: make(map[*Symbol]Value)}
	})
	return obj.(*Dict)
}

// NewWeak allocates an empty weak registry.
func (h *Heap) NewWeak() *Weak {
	obj := h.Alloc(TagWeak, 1, func(hdr *Header) Object {
		return &Weak{Header: *hdr, Map: make(map[Object]Value)}
	})
	return obj.(*Weak)
}

// NewEnv allocates a fresh environment frame with the given parent (nil for
// a top-level frame).
func (h *Heap) NewEnv(parent *Env) *Env {
	obj := h.Alloc(TagEnv, 1, func(hdr *Header) Object {
		return &Env{Header: *hdr, Map: make(map[*Symbol]Value), Parent: parent}
	})
	return obj.(*Env)
}

// NewNativeProc allocates a Proc wrapping a native Go function.
func (h *Heap) NewNativeProc(name string, fn NativeFunc) *Proc {
	obj := h.Alloc(TagProc, 1, func(hdr *Header) Object {
		return &Proc{Header: *hdr, Name: name, Native: fn}
	})
	return obj.(*Proc)
}

// NewClosure allocates a Proc wrapping interpreted bytecode, bumping rep's
// refcount to record the new owner.
func (h *Heap) NewClosure(name string, rep *Irep, ctx *Context) *Proc {
	rep.IncRef()
	obj := h.Alloc(TagProc, 1, func(hdr *Header) Object {
		return &Proc{Header: *hdr, Name: name, Irep: rep, Ctx: ctx}
	})
	return obj.(*Proc)
}

// NewContext allocates a closure register frame of size n with parent up.
func (h *Heap) NewContext(n int, up *Context) *Context {
	obj := h.Alloc(TagContext, uint32(1+n), func(hdr *Header) Object {
		regs := make([]Value, n)
		for i := range regs {
			regs[i] = Undef()
		}
		return &Context{Header: *hdr, Regs: regs, Up: up}
	})
	return obj.(*Context)
}

// NewIrep allocates a fresh, unshared Irep (refcount starts at zero; the
// first NewClosure or parent Irep that references it bumps it to one via
// IncRef).
func (h *Heap) NewIrep(code []byte, ints []int, doubles []float64, pool []Value, children []*Irep, argc, localc, capturec int, variadic bool) *Irep {
	obj := h.Alloc(TagIrep, 1, func(hdr *Header) Object {
		return &Irep{
			Header: *hdr, Code: code, Ints: ints, Doubles: doubles, Pool: pool,
			Children: children, Argc: argc, Localc: localc, Capturec: capturec, Variadic: variadic,
		}
	})
	rep := obj.(*Irep)
	for _, c := range children {
		c.IncRef()
	}
	return rep
}

// NewError allocates an error condition object.
func (h *Heap) NewError(typ *Symbol, message string, irritants Value, stack string) *ErrorObj {
	obj := h.Alloc(TagError, 1, func(hdr *Header) Object {
		return &ErrorObj{Header: *hdr, Type: typ, Message: message, Irritants: irritants, Stack: stack}
	})
	return obj.(*ErrorObj)
}

// NewRecord allocates a record instance.
func (h *Heap) NewRecord(typ, datum Value) *Record {
	obj := h.Alloc(TagRecord, 1, func(hdr *Header) Object {
		return &Record{Header: *hdr, Type: typ, Datum: datum}
	})
	return obj.(*Record)
}

// NewCheckpoint allocates one dynamic-wind checkpoint frame. Its ID is a
// fresh UUID that names the checkpoint without exposing the underlying
// pointer; nothing in this module prints or reads it.
func (h *Heap) NewCheckpoint(in, out Value, previous *Checkpoint) *Checkpoint {
	depth := 0
	if previous != nil {
		depth = previous.Depth + 1
	}
	id := uuid.New().String()
	obj := h.Alloc(TagCheckpoint, 1, func(hdr *Header) Object {
		return &Checkpoint{Header: *hdr, ID: id, In: in, Out: out, Depth: depth, Previous: previous}
	})
	return obj.(*Checkpoint)
}

// NewIdentifier allocates a plain (non-aliased) identifier naming name in
// env.
func (h *Heap) NewIdentifier(name string, env *Env) *Identifier {
	obj := h.Alloc(TagIdentifier, 1, func(hdr *Header) Object {
		return &Identifier{Header: *hdr, Name: name, Env: env}
	})
	return obj.(*Identifier)
}

// NewPort allocates a port wrapping the given stream ends. r, w, and closer
// may each be nil for a port that only reads, only writes, or owns no
// closeable OS resource, respectively.
func (h *Heap) NewPort(name string, r io.Reader, w io.Writer, closer io.Closer) *Port {
	obj := h.Alloc(TagPort, 1, func(hdr *Header) Object {
		return &Port{Header: *hdr, Name: name, Reader: r, Writer: w, Closer: closer}
	})
	return obj.(*Port)
}
