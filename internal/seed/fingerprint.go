// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package seed implements the seed/extend primitives: Fingerprint,
// Verify, and Seed, plus an optional Bloom pre-filter that
// accelerates bucket lookup without changing its result.
package seed

import "math"

// Sentinel denotes "window contains a non-ACGT base" and is excluded
// from the seed index.
const Sentinel uint32 = math.MaxUint32

// base4 maps A/C/G/T to their base-4 digit. Any other byte maps to
// ok=false and the caller must treat the whole window as Sentinel.
func base4(b byte) (uint32, bool) {
	switch b {
	case 'A':
		return 0, true
	case 'C':
		return 1, true
	case 'G':
		return 2, true
	case 'T':
		return 3, true
	default:
		return 0, false
	}
}

// Fingerprint encodes a length-len(window) k-mer as a base-4 number,
// leftmost base most significant, returning Sentinel as soon as any
// base outside {A,C,G,T} is encountered.
//
// This replaces the source's four unrolled per-k kernels (spec design
// note: one of them writes its first case to arr[k-2] instead of
// arr[k-1]) with a single parameterised loop that is correct for any
// k by construction: there is exactly one write per position, and the
// loop does not depend on k being a compile-time constant.
func Fingerprint(window []byte) uint32 {
	var v uint32
	for _, b := range window {
		d, ok := base4(b)
		if !ok {
			return Sentinel
		}
		v = v*4 + d
	}
	return v
}
