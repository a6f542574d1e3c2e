// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package bridge

import "golang.org/x/crypto/sha3"

// StringHash returns a 64-bit hash of s suitable for bucketing a DICT or
// WEAK object keyed by string content, built from the same production hash
// (sha3-256, truncated) used for interned symbol digests rather than a
// hand-rolled FNV.
func StringHash(s string) uint64 {
	sum := sha3.Sum256([]byte(s))
	var h uint64
	for i := 0; i < 8; i++ {
		h = h<<8 | uint64(sum[i])
	}
	return h
}
