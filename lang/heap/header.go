// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package heap

// ObjTag identifies the concrete shape of a heap Object, mirroring the
// union discriminant of the reference allocator.
type ObjTag uint8

const (
	TagPair ObjTag = iota
	TagString
	TagBlob
	TagVector
	TagSymbol
	TagDict
	TagWeak
	TagIdentifier
	TagEnv
	TagProc
	TagContext
	TagIrep
	TagPort
	TagError
	TagRecord
	TagCheckpoint
)

func (t ObjTag) String() string {
	switch t {
	case TagPair:
		return "pair"
	case TagString:
		return "string"
	case TagBlob:
		return "bytevector"
	case TagVector:
		return "vector"
	case TagSymbol:
		return "symbol"
	case TagDict:
		return "dictionary"
	case TagWeak:
		return "weak"
	case TagIdentifier:
		return "identifier"
	case TagEnv:
		return "environment"
	case TagProc:
		return "procedure"
	case TagContext:
		return "context"
	case TagIrep:
		return "irep"
	case TagPort:
		return "port"
	case TagError:
		return "error"
	case TagRecord:
		return "record"
	case TagCheckpoint:
		return "checkpoint"
	default:
		return "unknown"
	}
}

// Header is embedded as the first field of every concrete heap object type.
// It carries the bookkeeping the allocator and collector need and is never
// touched by interpreter-level code.
type Header struct {
	tag   ObjTag
	mark  bool
	id    uint32 // index of this object's head cell in the heap's cell array
	units uint32 // number of cells this allocation spans
}

// Header returns o's own embedded header; every concrete object type gets
// this for free by embedding Header.
func (h *Header) Header() *Header { return h }

// Tag reports the object's dynamic heap type.
func (h *Header) Tag() ObjTag { return h.tag }

// Object is implemented by every value that can live on the Heap.
type Object interface {
	Header() *Header
}

// There is no marker interface for objects that hold references to other
// objects or Values: the collector's markObj (gc.go) type-switches on the
// concrete object types directly.
