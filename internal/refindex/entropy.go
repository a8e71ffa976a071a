// Copyright 2026, Kerby Shedden and the Pemap contributors.

package refindex

// countDinuc returns the number of distinct dinucleotide subsequences
// in window, using wk as scratch space (len(wk) must be >= 25).
// Adapted from the teacher's utils.CountDinuc; used here purely as a
// diagnostic (Build logs how many indexed k-mers are low-complexity)
// rather than to exclude k-mers from the index, since filtering would
// change which seeds are available and SPEC_FULL.md's index
// construction makes no such exception.
func countDinuc(window []byte, wk []int) int {
	for i := range wk {
		wk[i] = 0
	}

	var last, n int
	for i, x := range window {
		var v int
		switch x {
		case 'A':
			v = 0
		case 'T':
			v = 1
		case 'G':
			v = 2
		case 'C':
			v = 3
		default:
			v = 4
		}
		if i > 0 {
			k := 5*last + v
			if wk[k] == 0 {
				n++
			}
			wk[k]++
		}
		last = v
	}
	return n
}

// lowComplexityThreshold mirrors the teacher's MinDinuc default.
const lowComplexityThreshold = 5

// countLowComplexity returns how many of the k-length windows in seq
// have fewer than lowComplexityThreshold distinct dinucleotides.
func countLowComplexity(seq []byte, k int) int {
	wk := make([]int, 25)
	var n int
	for off := 0; off+k <= len(seq); off++ {
		if countDinuc(seq[off:off+k], wk) < lowComplexityThreshold {
			n++
		}
	}
	return n
}
