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

	"github.com/probechain/ilisp/lang/rope"
)

// Pair is a cons cell: the sole building block of lists.
type Pair struct {
	Header
	Car, Cdr Value
}

// Str is a boxed immutable string backed by a rope of bytes.
type Str struct {
	Header
	Rope *rope.Rope
}

// Blob is a boxed mutable byte vector (R7RS bytevector).
type Blob struct {
	Header
	Data []byte
}

// Vector is a boxed mutable array of Values.
type Vector struct {
	Header
	Elems []Value
}

// Symbol is an interned name. Two symbols with the same Name are always the
// same *Symbol (see Heap.Intern), so symbol equality is pointer equality.
type Symbol struct {
	Header
	Name string

	// Digest is the sha3-256 fingerprint of Name, computed once at intern
	// time. Nothing in the runtime reads it: the symbol table is keyed on
	// Name, and the string-hash native procedure hashes string contents
	// itself (bridge.StringHash).
	Digest [32]byte
}

// Dict is a boxed hash table keyed on symbols.
type Dict struct {
	Header
	Map map[*Symbol]Value
}

// Weak is a boxed hash table whose keys do not by themselves keep their
// entries alive: an entry survives a collection only if its key is
// reachable some other way. See gc.go's weak-registry fixpoint.
type Weak struct {
	Header
	Map map[Object]Value
}

// Identifier names a binding in a particular environment, used by the
// macro expander's hygiene machinery. Exactly one of Name / NameID is set.
type Identifier struct {
	Header
	Name   string
	NameID *Identifier
	Env    *Env
}

// Env is an environment frame: a symbol-to-value map plus a parent link.
type Env struct {
	Header
	Map     map[*Symbol]Value
	Parent  *Env
	Library string
}

// NativeFunc is the signature of a primitive procedure implemented in Go.
// Machine is the minimal capability a native procedure needs from its
// caller; *vm.VM implements it without heap importing vm (which would be
// a cyclic import).
type NativeFunc func(m Machine, args []Value) (Value, error)

// Machine is implemented by the bytecode virtual machine.
type Machine interface {
	Heap() *Heap
}

// Proc is a procedure value: either a native Go function with captured
// upvalues, or an interpreted closure over an Irep and a captured Context.
type Proc struct {
	Header
	Name     string
	Native   NativeFunc
	Captured []Value
	Irep     *Irep
	Ctx      *Context
}

// IsNative reports whether p wraps a native Go function rather than
// interpreted bytecode.
func (p *Proc) IsNative() bool { return p.Native != nil }

// Context is a closure's captured register frame, allocated on the heap
// once a Context "tears off" from the VM's native call stack.
type Context struct {
	Header
	Regs []Value
	Up   *Context
}

// Irep ("instruction representation") is compiled bytecode for one lambda
// body: its code, constant/number pools, and nested lambda bodies. Ireps
// are heap objects traced by the collector, but also carry an independent
// reference count since a single Irep is commonly shared by many Proc
// closures created from the same lambda expression at different times.
type Irep struct {
	Header
	Code     []byte
	Ints     []int
	Doubles  []float64
	Pool     []Value
	Children []*Irep
	Argc     int
	Localc   int
	Capturec int
	Variadic bool

	refcount int
}

// IncRef records a new owner of rep (a Proc or a parent Irep's Children
// slot).
func (rep *Irep) IncRef() { rep.refcount++ }

// DecRef releases one ownership of rep, reporting whether the count reached
// zero. It does not itself cascade into rep's children — callers that want
// cascading release (sweep-time finalization) call DecRefCascade.
func (rep *Irep) DecRef() bool {
	rep.refcount--
	if rep.refcount < 0 {
		panic("heap: irep refcount underflow")
	}
	return rep.refcount == 0
}

// DecRefCascade releases one ownership of rep, and if that was the last
// owner, recursively releases rep's ownership of its child ireps too.
func DecRefCascade(rep *Irep) {
	if rep == nil {
		return
	}
	if rep.DecRef() {
		for _, c := range rep.Children {
			DecRefCascade(c)
		}
	}
}

// Port wraps an underlying I/O stream. Closer may be nil for ports that
// don't own an OS resource (e.g. string ports).
type Port struct {
	Header
	Name   string
	Reader io.Reader
	Writer io.Writer
	Closer io.Closer
	Closed bool
}

// Close releases the port's underlying resource, if any, and marks it
// closed. Idempotent.
func (p *Port) Close() error {
	if p.Closed {
		return nil
	}
	p.Closed = true
	if p.Closer != nil {
		return p.Closer.Close()
	}
	return nil
}

// ErrorObj is a boxed condition object: the payload carried by raise and
// surfaced to with-exception-handler handlers and error-object accessors.
type ErrorObj struct {
	Header
	Type      *Symbol
	Message   string
	Irritants Value // a (possibly improper) list
	Stack     string
}

// Record is an instance of a user-defined record type: Type names the type
// (itself typically a Symbol or a small descriptor Value) and Datum holds
// the field values, conventionally as a Vector.
type Record struct {
	Header
	Type  Value
	Datum Value
}

// Checkpoint is one frame of the dynamic-wind chain: before/after thunks
// plus a link to the enclosing checkpoint, threaded through call/cc-style
// continuations so winding and unwinding can replay the right thunks.
type Checkpoint struct {
	Header
	ID       string
	In, Out  Value
	Depth    int
	Previous *Checkpoint
}
