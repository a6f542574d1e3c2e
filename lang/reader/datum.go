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
	"strconv"
	"strings"

	"github.com/probechain/ilisp/lang/heap"
)

// charNames maps the named characters of #\name syntax to their byte value.
var charNames = map[string]byte{
	"alarm":     7,
	"backspace": 8,
	"delete":    127,
	"escape":    27,
	"newline":   10,
	"null":      0,
	"return":    13,
	"space":     32,
	"tab":       9,
}

// readDatum skips atmosphere (whitespace, comments, datum comments), then
// dispatches on the first significant character. Returns the EOF marker
// Value, not an error, when the stream ends before any datum begins.
func (r *Reader) readDatum(h *heap.Heap) (heap.Value, error) {
	if err := r.skipAtmosphere(h); err != nil {
		return heap.Value{}, err
	}
	c, err := r.readByte()
	if err == io.EOF {
		return heap.EOFObject(), nil
	}
	if err != nil {
		return heap.Value{}, err
	}

	switch {
	case c == '(':
		return r.readList(h)
	case c == ')':
		return heap.Value{}, r.errf("unmatched close paren")
	case c == '\'':
		return r.readWrapped(h, "quote")
	case c == '`':
		return r.readWrapped(h, "quasiquote")
	case c == ',':
		return r.readUnquote(h)
	case c == '"':
		return r.readString(h)
	case c == '|':
		return r.readPipeSymbol(h)
	case c == '#':
		return r.readSharp(h)
	case isDigit(c):
		r.unreadByte()
		return r.readNumberOrSymbol(h)
	case c == '+' || c == '-':
		r.unreadByte()
		return r.readNumberOrSymbol(h)
	default:
		r.unreadByte()
		return r.readSymbol(h)
	}
}

// skipAtmosphere discards whitespace, line comments, nestable block
// comments, and datum comments (#;DATUM) preceding the next token. Datum
// comments recursively parse (and discard) one full datum rather than just
// skipping characters, since the commented-out datum may itself contain
// arbitrarily nested structure, parens included.
func (r *Reader) skipAtmosphere(h *heap.Heap) error {
	for {
		c, ok := r.peekByte()
		if !ok {
			return nil
		}
		switch {
		case isSpace(c):
			r.readByte()
		case c == ';':
			r.readByte()
			for {
				c, err := r.readByte()
				if err != nil || c == '\n' {
					break
				}
			}
		case c == '#':
			// Look at '#' and the byte after it without consuming either:
			// bufio cannot push '#' back once a peek has followed its read.
			b, _ := r.src.Peek(2)
			if len(b) < 2 {
				r.readByte()
				return r.errf("unexpected EOF after '#'")
			}
			switch b[1] {
			case '|':
				r.readByte()
				r.readByte()
				if err := r.skipBlockComment(); err != nil {
					return err
				}
			case ';':
				r.readByte()
				r.readByte()
				if _, err := r.readDatum(h); err != nil {
					return err
				}
			default:
				// Not atmosphere: '#' is left unread so readDatum sees it.
				return nil
			}
		default:
			return nil
		}
	}
}

// skipBlockComment consumes up to and including the closing "|#" of a
// #| ... |# comment, honoring nesting.
func (r *Reader) skipBlockComment() error {
	depth := 1
	for depth > 0 {
		c, err := r.readByte()
		if err != nil {
			return r.errf("unterminated block comment")
		}
		switch c {
		case '#':
			if n, ok := r.peekByte(); ok && n == '|' {
				r.readByte()
				depth++
			}
		case '|':
			if n, ok := r.peekByte(); ok && n == '#' {
				r.readByte()
				depth--
			}
		}
	}
	return nil
}

// readWrapped reads the next datum and wraps it as (sym datum), the shared
// shape behind ', `, syntax-quote, and syntax-quasiquote.
func (r *Reader) readWrapped(h *heap.Heap, sym string) (heap.Value, error) {
	inner, err := r.readDatum(h)
	if err != nil {
		return heap.Value{}, err
	}
	if inner.Tag() == heap.TagEOF {
		return heap.Value{}, r.errf("unexpected EOF after %q", sym)
	}
	return h.List(heap.FromObject(h.Intern(sym)), inner), nil
}

// readUnquote handles ',' and ',@'. The #, / #,@ syntax-unquote forms are
// handled separately by readSharp's readSyntaxUnquote.
func (r *Reader) readUnquote(h *heap.Heap) (heap.Value, error) {
	sym := "unquote"
	if c, ok := r.peekByte(); ok && c == '@' {
		r.readByte()
		sym = "unquote-splicing"
	}
	return r.readWrapped(h, sym)
}

// readList parses the body of a list after '(' has been consumed: zero or
// more datums, optionally followed by ". tail" before the closing ')'.
func (r *Reader) readList(h *heap.Heap) (heap.Value, error) {
	v, _, err := r.readListBody(h, false)
	return v, err
}

// readListBody reads list elements until ')', returning the assembled list
// and whether a dotted tail was used. vectorCtx disallows the dotted tail,
// since #(...) and #u8(...) bodies are always proper lists.
func (r *Reader) readListBody(h *heap.Heap, vectorCtx bool) (heap.Value, bool, error) {
	var elems []heap.Value
	tail := heap.Nil()
	dotted := false

	for {
		if err := r.skipAtmosphere(h); err != nil {
			return heap.Value{}, false, err
		}
		// A lone '.' is recognised before anything is consumed, so a token
		// that merely starts with '.' is still there for readDatum below.
		if b, _ := r.src.Peek(2); !vectorCtx && len(b) > 0 && b[0] == '.' && (len(b) == 1 || isDelimiter(b[1])) {
			r.readByte()
			if len(elems) == 0 {
				return heap.Value{}, false, r.errf("dotted tail with no preceding elements")
			}
			t, err := r.readDatum(h)
			if err != nil {
				return heap.Value{}, false, err
			}
			tail = t
			dotted = true
			if err := r.skipAtmosphere(h); err != nil {
				return heap.Value{}, false, err
			}
			closeC, err := r.readByte()
			if err != nil || closeC != ')' {
				return heap.Value{}, false, r.errf("expected ) after dotted tail")
			}
			break
		}
		c, err := r.readByte()
		if err == io.EOF {
			return heap.Value{}, false, r.errf("unterminated list")
		}
		if err != nil {
			return heap.Value{}, false, err
		}
		if c == ')' {
			break
		}
		r.unreadByte()
		elem, err := r.readDatum(h)
		if err != nil {
			return heap.Value{}, false, err
		}
		if elem.Tag() == heap.TagEOF {
			return heap.Value{}, false, r.errf("unterminated list")
		}
		elems = append(elems, elem)
	}

	out := tail
	for i := len(elems) - 1; i >= 0; i-- {
		out = heap.FromObject(h.Cons(elems[i], out))
	}
	return out, dotted, nil
}

// readString parses a "..." literal after the opening quote has been
// consumed, honoring \a \b \t \n \r \" \\ escapes.
func (r *Reader) readString(h *heap.Heap) (heap.Value, error) {
	var buf []byte
	for {
		c, err := r.readByte()
		if err != nil {
			return heap.Value{}, r.errf("unterminated string literal")
		}
		if c == '"' {
			break
		}
		if c != '\\' {
			buf = append(buf, c)
			continue
		}
		esc, err := r.readByte()
		if err != nil {
			return heap.Value{}, r.errf("unterminated escape in string literal")
		}
		decoded, err := decodeEscape(r, esc)
		if err != nil {
			return heap.Value{}, err
		}
		buf = append(buf, decoded)
	}
	return heap.FromObject(h.NewString(buf)), nil
}

func decodeEscape(r *Reader, esc byte) (byte, error) {
	switch esc {
	case 'a':
		return 7, nil
	case 'b':
		return 8, nil
	case 't':
		return 9, nil
	case 'n':
		return 10, nil
	case 'r':
		return 13, nil
	case '"':
		return '"', nil
	case '\\':
		return '\\', nil
	case '|':
		return '|', nil
	default:
		return 0, r.errAt(string(esc), "unsupported escape sequence")
	}
}

// readPipeSymbol parses a |...| quoted symbol after the opening '|' has
// been consumed, honoring \x<hex>; escapes.
func (r *Reader) readPipeSymbol(h *heap.Heap) (heap.Value, error) {
	var buf []byte
	for {
		c, err := r.readByte()
		if err != nil {
			return heap.Value{}, r.errf("unterminated |...| symbol")
		}
		if c == '|' {
			break
		}
		if c == '\\' {
			n, err := r.readByte()
			if err != nil {
				return heap.Value{}, r.errf("unterminated escape in |...| symbol")
			}
			if n == 'x' || n == 'X' {
				b, err := r.readHexEscape()
				if err != nil {
					return heap.Value{}, err
				}
				buf = append(buf, b)
				continue
			}
			decoded, err := decodeEscape(r, n)
			if err != nil {
				return heap.Value{}, err
			}
			buf = append(buf, decoded)
			continue
		}
		buf = append(buf, c)
	}
	return heap.FromObject(h.Intern(string(buf))), nil
}

// readHexEscape reads the hex digits of a \x...; escape (the leading x/X
// has already been consumed) and returns the resulting byte.
func (r *Reader) readHexEscape() (byte, error) {
	var digits []byte
	for {
		c, err := r.readByte()
		if err != nil {
			return 0, r.errf("unterminated \\x escape")
		}
		if c == ';' {
			break
		}
		digits = append(digits, c)
	}
	n, err := strconv.ParseInt(string(digits), 16, 32)
	if err != nil {
		return 0, r.errAt(string(digits), "invalid hex escape")
	}
	if n < 0 || n > 255 {
		return 0, r.errAt(string(digits), "hex escape out of byte range")
	}
	return byte(n), nil
}

// readSymbol reads a bare symbol token, folding case if fold-case mode is
// active.
func (r *Reader) readSymbol(h *heap.Heap) (heap.Value, error) {
	tok, err := r.readToken()
	if err != nil {
		return heap.Value{}, err
	}
	if len(tok) == 0 {
		c, _ := r.peekByte()
		return heap.Value{}, r.errAt(string(c), "unexpected character")
	}
	return heap.FromObject(h.Intern(string(r.fold(tok)))), nil
}

// readNumberOrSymbol reads a token beginning with a digit, '+', or '-' and
// classifies it as an integer, a float, one of the signed infinity/NaN
// symbols, or (failing all of those) a plain symbol.
func (r *Reader) readNumberOrSymbol(h *heap.Heap) (heap.Value, error) {
	tok, err := r.readToken()
	if err != nil {
		return heap.Value{}, err
	}
	s := string(tok)

	switch strings.ToLower(s) {
	case "+inf.0":
		return heap.Float(posInf), nil
	case "-inf.0":
		return heap.Float(negInf), nil
	case "+nan.0", "-nan.0":
		return heap.Float(nan), nil
	}

	if v, ok := parseNumber(s); ok {
		return v, nil
	}
	return heap.FromObject(h.Intern(string(r.fold([]byte(s))))), nil
}

// parseNumber classifies s as a Scheme number literal. Returns ok=false for
// anything that isn't a recognizable number (e.g. a bare "+" or "-", or a
// symbol that merely starts with a digit-adjacent sign).
func parseNumber(s string) (heap.Value, bool) {
	if s == "" || s == "+" || s == "-" || s == "." {
		return heap.Value{}, false
	}
	body := s
	if body[0] == '+' || body[0] == '-' {
		body = body[1:]
	}
	if body == "" {
		return heap.Value{}, false
	}
	hasDigit := false
	isFloat := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case isDigit(c):
			hasDigit = true
		case c == '.':
			isFloat = true
		case c == 'e' || c == 'E':
			isFloat = true
		case c == '+' || c == '-':
			// only valid right after an exponent marker; let ParseFloat
			// reject anything malformed below.
		default:
			return heap.Value{}, false
		}
	}
	if !hasDigit {
		return heap.Value{}, false
	}
	if !isFloat {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// Overflowed the machine int: promote to float rather than
			// reject, mirroring heap.NegateInt's INT_MIN promotion.
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return heap.Value{}, false
			}
			return heap.Float(f), true
		}
		if int64(int(n)) != n {
			return heap.Float(float64(n)), true
		}
		return heap.Int(int(n)), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return heap.Value{}, false
	}
	return heap.Float(f), true
}
