// Copyright 2026, Kerby Shedden and the Pemap contributors.

package seed

// BucketSource is the subset of the reference index's public contract
// that Seed needs: resolve a fingerprint to a bucket index. Declaring
// it here (rather than depending on the refindex package directly)
// keeps this package free of the index's construction machinery and
// avoids an import cycle, since refindex uses Fingerprint from this
// package to build its triple stream.
type BucketSource interface {
	LookupFingerprint(fp uint32) (bucketIndex int, ok bool)
}

// Prefilter is satisfied by the optional Bloom pre-filter. A nil
// Prefilter disables the pre-check; MaybeContains must never return
// false for a k-mer window that is actually present in the index (no
// false negatives), so a false answer always short-circuits safely.
type Prefilter interface {
	MaybeContains(window []byte) bool
}

// Seed slides forward from cursor in steps of step through read
// positions 0..len(read)-k, looking for a k-mer whose fingerprint
// resolves to a bucket in src. On a hit it returns that bucket's
// index and found=true; the caller decides whether and how to use the
// match. In all cases nextCursor is cursor advanced by at least one
// step, so a caller that always re-enters at nextCursor cannot loop
// forever: cursor strictly increases until the window no longer fits,
// closing the possible infinite loop the source's no_disjoin_*/eval_*
// policies risked when EXHAUSTED.
//
// found is false once cursor exceeds len(read)-k: the caller should
// treat this as EXHAUSTED and stop probing.
//
// hitCursor is the read position the returned bucket was seeded from
// (needed by Anchor); nextCursor is where the caller should resume
// probing past this hit. Both fields matter even on a hit: a caller
// iterating a paired mate's own anchors re-enters at nextCursor, while
// the placement geometry for the hit itself anchors at hitCursor.
func Seed(read []byte, cursor, step, k int, src BucketSource, pre Prefilter) (bucketIndex, hitCursor, nextCursor int, found bool) {
	n := len(read)
	for cursor <= n-k {
		window := read[cursor : cursor+k]
		next := cursor + step
		if pre == nil || pre.MaybeContains(window) {
			fp := Fingerprint(window)
			if fp != Sentinel {
				if bi, ok := src.LookupFingerprint(fp); ok {
					return bi, cursor, next, true
				}
			}
		}
		cursor = next
	}
	return 0, cursor, cursor, false
}

// Anchor computes the putative read-to-reference alignment start
// implied by a seed hit: a read position cursor matching a reference
// occurrence at absolute offset o implies the read would start at
// o-cursor. Anchor rejects negative starts and starts that would run
// the read past the end of the reference sequence (refLen).
func Anchor(o, cursor, readLen, refLen int) (start int, ok bool) {
	start = o - cursor
	if start < 0 {
		return 0, false
	}
	if start+readLen > refLen {
		return 0, false
	}
	return start, true
}
