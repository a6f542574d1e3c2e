// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package bridge implements the argument-unpacking convention native
// procedures use to pull typed Go values out of the VM's raw operand
// window, mirroring the reference runtime's pic_get_args format strings.
//
//	char  destination type           meaning
//	----  ---------------------      -------
//	 o    *heap.Value                 any value, unconverted
//	 i    *int                        exact integer
//	 I    *int, *bool                 integer, with an exactness flag
//	 f    *float64                    inexact number (int widens to float)
//	 F    *float64, *bool             ditto, with an exactness flag
//	 c    *byte                       character
//	 z    *string                     Go string copied out of a STRING object
//	 m    **heap.Symbol                symbol
//	 v    **heap.Vector                vector
//	 s    **heap.Str                   string object
//	 b    **heap.Blob                  bytevector
//	 l    **heap.Proc                  procedure
//	 p    **heap.Port                  port
//	 d    **heap.Dict                  dictionary
//	 e    **heap.ErrorObj              error condition object
//	 r    **heap.Record                record instance
//
//	 |    marks the start of optional parameters
//	 *    *int, *[]heap.Value          collects the remaining arguments
//	 &    (leading) the call also binds the procedure's own Value first
//
// A Spec is compiled once, when a native procedure is registered; Bind is
// the repeated per-call path and does no parsing.
package bridge

import (
	"fmt"
)

// Spec is a compiled argument format.
type Spec struct {
	codes  []byte
	paramc int
	optc   int
	rest   bool
	self   bool
	raw    string
}

// Compile parses a format string once into a reusable Spec.
func Compile(format string) (*Spec, error) {
	s := &Spec{raw: format}
	f := format
	if len(f) > 0 && f[0] == '&' {
		s.self = true
		f = f[1:]
	}

	i := 0
	for i < len(f) && f[i] != '|' && f[i] != '*' {
		if err := checkCode(f[i]); err != nil {
			return nil, err
		}
		s.codes = append(s.codes, f[i])
		i++
	}
	s.paramc = i

	if i < len(f) && f[i] == '|' {
		i++
		for i < len(f) && f[i] != '*' {
			if err := checkCode(f[i]); err != nil {
				return nil, err
			}
			s.codes = append(s.codes, f[i])
			s.optc++
			i++
		}
	}

	if i < len(f) && f[i] == '*' {
		s.rest = true
		i++
	}

	if i != len(f) {
		return nil, fmt.Errorf("bridge: trailing characters in format %q", format)
	}
	return s, nil
}

func checkCode(c byte) error {
	switch c {
	case 'o', 'i', 'I', 'f', 'F', 'c', 'z', 'm', 'v', 's', 'b', 'l', 'p', 'd', 'e', 'r':
		return nil
	default:
		return fmt.Errorf("bridge: invalid argument specifier %q", c)
	}
}

// Arity returns the minimum and maximum number of arguments this Spec
// accepts; max is -1 if the Spec collects a rest argument.
func (s *Spec) Arity() (min, max int) {
	min = s.paramc
	if s.rest {
		return min, -1
	}
	return min, s.paramc + s.optc
}
