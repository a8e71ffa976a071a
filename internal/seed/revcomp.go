// Copyright 2026, Kerby Shedden and the Pemap contributors.

package seed

// complement maps a base to its Watson-Crick complement, keeping its
// case (lowercase bases map to lowercase complements) and passing any
// other byte (including 'N') through unchanged.
// Grounded on the teacher's own hand-rolled revcomp in
// cmd/muscato_prep_targets/main.go; kept as a plain byte switch rather
// than routed through biogo's Seq/alphabet types because the hot path
// here operates on raw []byte read buffers, not biogo sequence values,
// and converting per read would cost more than the switch saves.
func complement(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'g':
		return 'c'
	case 'c':
		return 'g'
	default:
		return b
	}
}

// RevComp returns the reverse complement of seq, leaving seq itself
// untouched.
func RevComp(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i, b := range seq {
		out[n-1-i] = complement(b)
	}
	return out
}
