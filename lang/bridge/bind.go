// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package bridge

import (
	"fmt"

	"github.com/probechain/ilisp/lang/heap"
)

// Bind unpacks args into dsts according to s, the way a native procedure
// pulls its typed parameters out of the VM's argument window.
//
// self is the procedure's own Value, consumed as the first destination only
// when the format began with '&'; pass heap.Value{} when the format has no
// leading '&'.
//
// dsts must supply one pointer per non-rest format code (two for 'I'/'F':
// the number destination followed by a *bool exactness flag), in format
// order; a trailing rest ('*') format additionally consumes a *int
// destination receiving the count and a *[]heap.Value destination receiving
// every argument beyond paramc+optc.
func (s *Spec) Bind(self heap.Value, args []heap.Value, dsts ...interface{}) error {
	argc := len(args)
	min, max := s.Arity()
	if argc < min || (max >= 0 && argc > max) {
		return fmt.Errorf("bridge: wrong number of arguments (%d for %s)", argc, arityDesc(min, max))
	}

	di := 0
	if s.self {
		if di >= len(dsts) {
			return fmt.Errorf("bridge: missing destination for self procedure")
		}
		p, ok := dsts[di].(*heap.Value)
		if !ok {
			return fmt.Errorf("bridge: destination for '&' must be *heap.Value")
		}
		*p = self
		di++
	}

	n := s.paramc + s.optc
	if n > argc {
		n = argc
	}
	for i := 0; i < n; i++ {
		code := s.codes[i]
		if err := bindOne(code, args[i], dsts, &di); err != nil {
			return fmt.Errorf("bridge: argument %d: %w", i+1, err)
		}
	}

	if s.rest {
		if di+1 >= len(dsts) {
			return fmt.Errorf("bridge: missing destinations for rest argument")
		}
		countPtr, ok := dsts[di].(*int)
		if !ok {
			return fmt.Errorf("bridge: rest count destination must be *int")
		}
		restPtr, ok := dsts[di+1].(*[]heap.Value)
		if !ok {
			return fmt.Errorf("bridge: rest values destination must be *[]heap.Value")
		}
		rest := args[n:]
		*countPtr = len(rest)
		*restPtr = rest
	}
	return nil
}

func arityDesc(min, max int) string {
	if max < 0 {
		return fmt.Sprintf("at least %d", min)
	}
	if min == max {
		return fmt.Sprintf("%d", min)
	}
	return fmt.Sprintf("%d to %d", min, max)
}

func bindOne(code byte, v heap.Value, dsts []interface{}, di *int) error {
	next := func() (interface{}, error) {
		if *di >= len(dsts) {
			return nil, fmt.Errorf("not enough destinations supplied")
		}
		d := dsts[*di]
		*di++
		return d, nil
	}

	switch code {
	case 'o':
		d, err := next()
		if err != nil {
			return err
		}
		p, ok := d.(*heap.Value)
		if !ok {
			return fmt.Errorf("'o' destination must be *heap.Value")
		}
		*p = v

	case 'i', 'I':
		d, err := next()
		if err != nil {
			return err
		}
		np, ok := d.(*int)
		if !ok {
			return fmt.Errorf("'%c' destination must be *int", code)
		}
		var exact bool
		switch {
		case v.IsInt():
			*np = v.AsInt()
			exact = true
		case v.IsFloat():
			*np = int(v.AsFloat())
			exact = false
		default:
			return fmt.Errorf("expected a number, got %s", v.Tag())
		}
		if code == 'I' {
			ed, err := next()
			if err != nil {
				return err
			}
			ep, ok := ed.(*bool)
			if !ok {
				return fmt.Errorf("'I' exactness destination must be *bool")
			}
			*ep = exact
		}

	case 'f', 'F':
		d, err := next()
		if err != nil {
			return err
		}
		fp, ok := d.(*float64)
		if !ok {
			return fmt.Errorf("'%c' destination must be *float64", code)
		}
		var exact bool
		switch {
		case v.IsFloat():
			*fp = v.AsFloat()
			exact = false
		case v.IsInt():
			*fp = float64(v.AsInt())
			exact = true
		default:
			return fmt.Errorf("expected a number, got %s", v.Tag())
		}
		if code == 'F' {
			ed, err := next()
			if err != nil {
				return err
			}
			ep, ok := ed.(*bool)
			if !ok {
				return fmt.Errorf("'F' exactness destination must be *bool")
			}
			*ep = exact
		}

	case 'c':
		d, err := next()
		if err != nil {
			return err
		}
		cp, ok := d.(*byte)
		if !ok {
			return fmt.Errorf("'c' destination must be *byte")
		}
		if !v.IsChar() {
			return fmt.Errorf("expected a character, got %s", v.Tag())
		}
		*cp = v.AsChar()

	case 'z':
		d, err := next()
		if err != nil {
			return err
		}
		zp, ok := d.(*string)
		if !ok {
			return fmt.Errorf("'z' destination must be *string")
		}
		str, ok := objAs[*heap.Str](v)
		if !ok {
			return fmt.Errorf("expected a string, got %s", v.Tag())
		}
		*zp = string(str.Bytes())

	case 'm':
		return bindObj(v, dsts, di, "symbol", func(sym *heap.Symbol) {})

	case 'v':
		d, err := next()
		if err != nil {
			return err
		}
		vp, ok := d.(**heap.Vector)
		if !ok {
			return fmt.Errorf("'v' destination must be **heap.Vector")
		}
		vec, ok := objAs[*heap.Vector](v)
		if !ok {
			return fmt.Errorf("expected a vector, got %s", v.Tag())
		}
		*vp = vec

	case 's':
		d, err := next()
		if err != nil {
			return err
		}
		sp, ok := d.(**heap.Str)
		if !ok {
			return fmt.Errorf("'s' destination must be **heap.Str")
		}
		str, ok := objAs[*heap.Str](v)
		if !ok {
			return fmt.Errorf("expected a string, got %s", v.Tag())
		}
		*sp = str

	case 'b':
		d, err := next()
		if err != nil {
			return err
		}
		bp, ok := d.(**heap.Blob)
		if !ok {
			return fmt.Errorf("'b' destination must be **heap.Blob")
		}
		blob, ok := objAs[*heap.Blob](v)
		if !ok {
			return fmt.Errorf("expected a bytevector, got %s", v.Tag())
		}
		*bp = blob

	case 'l':
		d, err := next()
		if err != nil {
			return err
		}
		lp, ok := d.(**heap.Proc)
		if !ok {
			return fmt.Errorf("'l' destination must be **heap.Proc")
		}
		proc, ok := objAs[*heap.Proc](v)
		if !ok {
			return fmt.Errorf("expected a procedure, got %s", v.Tag())
		}
		*lp = proc

	case 'p':
		d, err := next()
		if err != nil {
			return err
		}
		pp, ok := d.(**heap.Port)
		if !ok {
			return fmt.Errorf("'p' destination must be **heap.Port")
		}
		port, ok := objAs[*heap.Port](v)
		if !ok {
			return fmt.Errorf("expected a port, got %s", v.Tag())
		}
		*pp = port

	case 'd':
		d, err := next()
		if err != nil {
			return err
		}
		dp, ok := d.(**heap.Dict)
		if !ok {
			return fmt.Errorf("'d' destination must be **heap.Dict")
		}
		dict, ok := objAs[*heap.Dict](v)
		if !ok {
			return fmt.Errorf("expected a dictionary, got %s", v.Tag())
		}
		*dp = dict

	case 'e':
		d, err := next()
		if err != nil {
			return err
		}
		ep, ok := d.(**heap.ErrorObj)
		if !ok {
			return fmt.Errorf("'e' destination must be **heap.ErrorObj")
		}
		eo, ok := objAs[*heap.ErrorObj](v)
		if !ok {
			return fmt.Errorf("expected an error object, got %s", v.Tag())
		}
		*ep = eo

	case 'r':
		d, err := next()
		if err != nil {
			return err
		}
		rp, ok := d.(**heap.Record)
		if !ok {
			return fmt.Errorf("'r' destination must be **heap.Record")
		}
		rec, ok := objAs[*heap.Record](v)
		if !ok {
			return fmt.Errorf("expected a record, got %s", v.Tag())
		}
		*rp = rec

	default:
		return fmt.Errorf("invalid argument specifier %q", code)
	}
	return nil
}

// bindObj handles the 'm' (symbol) case, the one object type whose Go zero
// value (a nil pointer) is indistinguishable enough from the others that a
// tiny helper reads better than inlining it into the big switch above.
func bindObj(v heap.Value, dsts []interface{}, di *int, want string, _ func(*heap.Symbol)) error {
	if *di >= len(dsts) {
		return fmt.Errorf("not enough destinations supplied")
	}
	d := dsts[*di]
	*di++
	mp, ok := d.(**heap.Symbol)
	if !ok {
		return fmt.Errorf("'m' destination must be **heap.Symbol")
	}
	sym, ok := objAs[*heap.Symbol](v)
	if !ok {
		return fmt.Errorf("expected a %s, got %s", want, v.Tag())
	}
	*mp = sym
	return nil
}

// objAs type-asserts v's heap object to T, failing if v is not an object or
// is an object of a different concrete type.
func objAs[T any](v heap.Value) (T, bool) {
	var zero T
	if !v.IsObject() {
		return zero, false
	}
	t, ok := v.Obj().(T)
	return t, ok
}
