// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package reader

import (
	"io"
	"math"
	"strconv"

	"github.com/probechain/ilisp/lang/heap"
)

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
	nan    = math.NaN()
)

// readSharp dispatches on the character following '#', implementing the
// secondary dispatch table of spec.md §4.F: booleans, characters, vectors,
// bytevectors, syntax-quote forms, fold-case directives, and datum labels.
func (r *Reader) readSharp(h *heap.Heap) (heap.Value, error) {
	c, err := r.readByte()
	if err == io.EOF {
		return heap.Value{}, r.errf("unexpected EOF after '#'")
	}
	if err != nil {
		return heap.Value{}, err
	}

	switch {
	case c == 't' || c == 'f':
		return r.readSharpBool(c)
	case c == '\\':
		return r.readChar(h)
	case c == '(':
		return r.readVector(h)
	case c == 'u':
		return r.readBytevector(h)
	case c == '\'':
		return r.readWrapped(h, "syntax-quote")
	case c == '`':
		return r.readWrapped(h, "syntax-quasiquote")
	case c == ',':
		return r.readSyntaxUnquote(h)
	case c == '!':
		return r.readDirective(h)
	case isDigit(c):
		r.unreadByte()
		return r.readLabel(h)
	default:
		return heap.Value{}, r.errAt(string(c), "unknown # syntax")
	}
}

// readSharpBool parses #t/#true/#f/#false, requiring a full-word match for
// the long forms rather than only checking the first letter.
func (r *Reader) readSharpBool(first byte) (heap.Value, error) {
	rest, err := r.readToken()
	if err != nil {
		return heap.Value{}, err
	}
	word := string(first) + string(rest)
	switch word {
	case "t", "true":
		return heap.Bool(true), nil
	case "f", "false":
		return heap.Bool(false), nil
	default:
		return heap.Value{}, r.errAt(word, "malformed boolean literal")
	}
}

// readChar parses a #\name or #\c character literal. The character
// immediately after the backslash is always taken literally regardless of
// whether it is itself a delimiter (so #\( is the left-paren character);
// only when that first character is alphabetic do we look further for a
// multi-letter name like #\newline.
func (r *Reader) readChar(h *heap.Heap) (heap.Value, error) {
	first, err := r.readByte()
	if err != nil {
		return heap.Value{}, r.errf("unexpected EOF after #\\")
	}
	if !isAlpha(first) {
		return heap.Char(first), nil
	}
	rest, err := r.readToken()
	if err != nil {
		return heap.Value{}, err
	}
	if len(rest) == 0 {
		return heap.Char(first), nil
	}
	name := string(first) + string(rest)
	if b, ok := charNames[name]; ok {
		return heap.Char(b), nil
	}
	return heap.Value{}, r.errAt(name, "unknown character name")
}

// readVector parses #(...) by first reading the parenthesized body as an
// ordinary (necessarily proper) list, then copying its elements into a
// fresh Vector — the derivation SPEC_FULL.md calls out so that a datum
// label defined inside a vector literal shares the same placeholder
// machinery as one inside a plain list.
func (r *Reader) readVector(h *heap.Heap) (heap.Value, error) {
	lst, _, err := r.readListBody(h, true)
	if err != nil {
		return heap.Value{}, err
	}
	elems, err := flattenProperList(lst)
	if err != nil {
		return heap.Value{}, err
	}
	return heap.FromObject(h.NewVectorFrom(elems)), nil
}

// readBytevector parses #u8(...): 'u' has already been consumed by
// readSharp; the next two bytes must be "8(".
func (r *Reader) readBytevector(h *heap.Heap) (heap.Value, error) {
	eight, err := r.readByte()
	if err != nil || eight != '8' {
		return heap.Value{}, r.errf("malformed bytevector literal, expected #u8(")
	}
	open, err := r.readByte()
	if err != nil || open != '(' {
		return heap.Value{}, r.errf("malformed bytevector literal, expected #u8(")
	}
	lst, _, err := r.readListBody(h, true)
	if err != nil {
		return heap.Value{}, err
	}
	elems, err := flattenProperList(lst)
	if err != nil {
		return heap.Value{}, err
	}
	data := make([]byte, len(elems))
	for i, v := range elems {
		if !v.IsInt() {
			return heap.Value{}, r.errf("bytevector element %d is not an integer", i)
		}
		n := v.AsInt()
		if n < 0 || n > 255 {
			return heap.Value{}, r.errf("bytevector element %d (%d) out of range 0..255", i, n)
		}
		data[i] = byte(n)
	}
	blob := h.NewBlob(len(data), 0)
	copy(blob.Data, data)
	return heap.FromObject(blob), nil
}

// readSyntaxUnquote handles #, and #,@.
func (r *Reader) readSyntaxUnquote(h *heap.Heap) (heap.Value, error) {
	sym := "syntax-unquote"
	if c, ok := r.peekByte(); ok && c == '@' {
		r.readByte()
		sym = "syntax-unquote-splicing"
	}
	return r.readWrapped(h, sym)
}

// readDirective handles #!fold-case and #!no-fold-case, the only #!
// directives this reader recognizes.
func (r *Reader) readDirective(h *heap.Heap) (heap.Value, error) {
	tok, err := r.readToken()
	if err != nil {
		return heap.Value{}, err
	}
	switch string(tok) {
	case "fold-case":
		r.foldCase = true
	case "no-fold-case":
		r.foldCase = false
	default:
		return heap.Value{}, r.errAt(string(tok), "unrecognized #! directive")
	}
	return r.readDatum(h)
}

// readLabel parses #n= (definition) or #n# (reference); the digits have
// not yet been consumed.
func (r *Reader) readLabel(h *heap.Heap) (heap.Value, error) {
	digits, err := r.readDigits()
	if err != nil {
		return heap.Value{}, err
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return heap.Value{}, r.errAt(string(digits), "malformed datum label")
	}
	marker, err := r.readByte()
	if err != nil {
		return heap.Value{}, r.errf("unterminated datum label")
	}
	switch marker {
	case '#':
		return r.lookupLabel(n)
	case '=':
		return r.readLabelDefinition(h, n)
	default:
		return heap.Value{}, r.errAt(string(marker), "malformed datum label, expected '=' or '#'")
	}
}

func (r *Reader) readDigits() ([]byte, error) {
	var buf []byte
	for {
		c, ok := r.peekByte()
		if !ok || !isDigit(c) {
			break
		}
		r.readByte()
		buf = append(buf, c)
	}
	if len(buf) == 0 {
		return nil, r.errf("malformed datum label: no digits")
	}
	return buf, nil
}

// readLabelDefinition implements #n=DATUM. If the upcoming datum is a list
// or vector literal, a placeholder object is allocated and registered
// before recursing into the body, so a #n# reference nested inside DATUM
// (including DATUM itself, for true cycles like #1=(a . #1#)) resolves to
// that same object; its contents are then copied in once the real read
// completes. Any other datum shape resolves only after it finishes reading.
func (r *Reader) readLabelDefinition(h *heap.Heap, n int) (heap.Value, error) {
	if err := r.skipAtmosphere(h); err != nil {
		return heap.Value{}, err
	}
	c, ok := r.peekByte()
	if !ok {
		return heap.Value{}, r.errf("unexpected EOF in datum label definition")
	}

	switch {
	case c == '(':
		r.readByte()
		placeholder := h.Cons(heap.Undef(), heap.Undef())
		slot := r.defineLabelContainer(n, heap.FromObject(placeholder))
		result, _, err := r.readListBody(h, false)
		if err != nil {
			return heap.Value{}, err
		}
		if pair, ok := result.Obj().(*heap.Pair); ok {
			placeholder.Car, placeholder.Cdr = pair.Car, pair.Cdr
			return slot.value, nil
		}
		// Empty list: no pair was produced, so the placeholder is unused;
		// rebind the label directly to nil.
		r.resolveLabel(slot, heap.Nil())
		return heap.Nil(), nil

	case c == '#':
		if b, _ := r.src.Peek(2); len(b) == 2 && b[1] == '(' {
			r.readByte()
			r.readByte()
			placeholder := h.NewVectorFrom(nil)
			slot := r.defineLabelContainer(n, heap.FromObject(placeholder))
			lst, _, err := r.readListBody(h, true)
			if err != nil {
				return heap.Value{}, err
			}
			elems, err := flattenProperList(lst)
			if err != nil {
				return heap.Value{}, err
			}
			placeholder.Elems = elems
			return slot.value, nil
		}
	}

	slot := r.defineLabelPending(n)
	v, err := r.readDatum(h)
	if err != nil {
		return heap.Value{}, err
	}
	r.resolveLabel(slot, v)
	return v, nil
}

// flattenProperList walks a list of cons cells (as produced by
// readListBody with vectorCtx=true, which never permits a dotted tail) into
// a slice, erroring if it somehow isn't a proper list.
func flattenProperList(v heap.Value) ([]heap.Value, error) {
	var out []heap.Value
	for {
		if v.IsNil() {
			return out, nil
		}
		pair, ok := v.Obj().(*heap.Pair)
		if !ok {
			return nil, ErrSyntax
		}
		out = append(out, pair.Car)
		v = pair.Cdr
	}
}
