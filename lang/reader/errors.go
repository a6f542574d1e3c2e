// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package reader

import (
	"errors"
	"fmt"

	"github.com/probechain/ilisp/lang/token"
)

// ErrSyntax is the sentinel every *SyntaxError wraps, so callers can test
// with errors.Is(err, reader.ErrSyntax) without caring about the message.
// Embedders that surface reader failures as interpreter conditions raise an
// error of type "read" (spec.md §7) wrapping this sentinel.
var ErrSyntax = errors.New("reader: syntax error")

// SyntaxError reports a lexical or structural failure at a specific input
// position, with an optional irritant (the offending character or token)
// the way spec.md §4.F requires ("all reader failures raise an error of
// type read with an irritants list, usually the offending character or
// index").
type SyntaxError struct {
	Pos      token.Position
	Msg      string
	Irritant string
}

func (e *SyntaxError) Error() string {
	if e.Irritant == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %q", e.Pos, e.Msg, e.Irritant)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

func (r *Reader) errf(format string, args ...interface{}) error {
	return &SyntaxError{Pos: r.pos, Msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) errAt(irritant string, format string, args ...interface{}) error {
	return &SyntaxError{Pos: r.pos, Msg: fmt.Sprintf(format, args...), Irritant: irritant}
}
