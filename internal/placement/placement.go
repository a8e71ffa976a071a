// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package placement implements the nine library orientation modes
// (ISF, ISR, IU, OSF, OSR, OU, SF, SR, U) as one data-driven engine
// instead of nine near-duplicate worker bodies. A Mode value selects a
// Descriptor; the same Place/PlaceSingle code paths run every mode.
package placement

import (
	"github.com/kshedden/pemap/internal/refindex"
	"github.com/kshedden/pemap/internal/seed"
)

// Strand labels a placed interval's orientation relative to the
// reference.
type Strand byte

const (
	Plus  Strand = '+'
	Minus Strand = '-'
)

// SingleResult describes a successful single-end placement.
type SingleResult struct {
	SeqIndex int
	Start    int
	End      int
	Strand   Strand
}

// PairedResult describes a successful paired placement. Score is 0
// when both mates land on the same reference sequence and 1 when they
// land on different sequences (only reachable with disjoin enabled).
type PairedResult struct {
	SeqIndex1 int
	Start1    int
	End1      int
	Strand1   Strand

	SeqIndex2 int
	Start2    int
	End2      int
	Strand2   Strand

	Score int
}

// orientation is "inward" (ISF/ISR/IU) or "outward" (OSF/OSR/OU);
// it fixes the mate-order constraint and the disjoin scan direction.
type orientation int

const (
	inward orientation = iota
	outward
)

// probe names which mate is seeded first (the anchor read), whether
// each side is reverse-complemented before seeding, and the strand
// label each of R1/R2 gets in the final interval — independent of
// probe order, since ISR probes R2 first but R1 is still reported as
// seq1/strand1 in BEDPE output.
type probe struct {
	primaryIsR1 bool // true: seed R1 first; false: seed R2 first
	rcPrimary   bool // reverse-complement the anchor (first-probed) read
	rcMate      bool // reverse-complement the mate read
	strand1     Strand
	strand2     Strand
}

// Descriptor is the single parameterization nine near-identical
// worker bodies collapse into: which reads to probe in which order,
// with which orientation constraint, and (for IU/OU) a fallback probe
// to try when the first one fails outright.
type Descriptor struct {
	Paired bool

	// Paired fields.
	Primary  probe
	Fallback *probe // nil unless the mode retries with mates swapped (IU, OU)
	Orient   orientation

	// Single-end fields.
	Single       singleProbe
	SingleFallback bool // U: retry with rc(read) on failure
}

type singleProbe int

const (
	singleAsIs singleProbe = iota
	singleRC
)

// EffectiveSingle adapts a single-end Descriptor to which mate is
// actually available. SF/SR are defined relative to R1: "R1 as-is"
// (SF) or "rc(R1)" (SR). When only R2 is supplied, §4.3's parenthetical
// substitutes rc(R2) for SF and R2-as-is for SR — the orientation
// flips because R2 is already the reverse-direction read. U is
// unaffected: it tries both orientations of whichever single read it
// is given, so there is nothing to flip.
func (d Descriptor) EffectiveSingle(hasR1 bool) Descriptor {
	if hasR1 || d.SingleFallback {
		return d
	}
	if d.Single == singleAsIs {
		d.Single = singleRC
	} else {
		d.Single = singleAsIs
	}
	return d
}

// Descriptors holds one entry per library mode, keyed by the string
// the CLI accepts (see internal/config.Mode).
var Descriptors = map[string]Descriptor{
	// ISF: probe (R1, rc(R2)); R1=+, R2=-.
	"ISF": {Paired: true, Orient: inward, Primary: probe{primaryIsR1: true, rcMate: true, strand1: Plus, strand2: Minus}},
	// ISR: probe (R2, rc(R1)); R1=+, R2=-.
	"ISR": {Paired: true, Orient: inward, Primary: probe{primaryIsR1: false, rcMate: true, strand1: Plus, strand2: Minus}},
	"IU": {
		Paired: true, Orient: inward,
		Primary:  probe{primaryIsR1: true, rcMate: true, strand1: Plus, strand2: Minus},
		Fallback: &probe{primaryIsR1: false, rcMate: true, strand1: Plus, strand2: Minus},
	},
	// OSF: probe (R1, rc(R2)); R1=-, R2=+.
	"OSF": {Paired: true, Orient: outward, Primary: probe{primaryIsR1: true, rcMate: true, strand1: Minus, strand2: Plus}},
	// OSR: probe (R2, rc(R1)); R1=-, R2=+.
	"OSR": {Paired: true, Orient: outward, Primary: probe{primaryIsR1: false, rcMate: true, strand1: Minus, strand2: Plus}},
	"OU": {
		Paired: true, Orient: outward,
		Primary:  probe{primaryIsR1: true, rcMate: true, strand1: Minus, strand2: Plus},
		Fallback: &probe{primaryIsR1: false, rcMate: true, strand1: Minus, strand2: Plus},
	},
	"SF": {Single: singleAsIs},
	"SR": {Single: singleRC},
	"U":  {Single: singleAsIs, SingleFallback: true},
}

// Engine binds a Descriptor-driven search to one reference index and
// the verify/seed parameters a run was configured with.
type Engine struct {
	Index          *refindex.Index
	MaxMismatchPct int
	IgnoreN        bool
	Step           int
	Disjoin        bool
	Eval           int
}

// candidate is an internally-collected same-sequence placement,
// scored for -e best-of-N comparison.
type candidate struct {
	result PairedResult
	score  int // combined 1+mismatches from both mates; lower is better
}

// anchorAt resolves one seed hit (bucket bi, found at read offset
// hitCursor) against every position in the bucket, returning the
// first reference position that both anchors in-bounds and verifies
// against probeSeq. seqFilter, when non-nil, restricts consideration
// to positions it accepts. The paired mate search does not use this
// helper: it walks bucket positions itself so that it can apply the
// mate-order constraint to every verified position.
func anchorAt(ix *refindex.Index, bi, hitCursor int, probeSeq []byte, maxMismatchPct int, ignoreN bool, seqFilter func(seqIndex int) bool) (seqIndex, start, score int, ok bool) {
	b := ix.LookupByIndex(bi)
	for _, pos := range b.Positions {
		if seqFilter != nil && !seqFilter(pos.SeqIndex) {
			continue
		}
		refSeq := ix.Sequences[pos.SeqIndex].Seq
		st, anchored := seed.Anchor(pos.Offset, hitCursor, len(probeSeq), len(refSeq))
		if !anchored {
			continue
		}
		sc := seed.VerifyScore(refSeq[st:st+len(probeSeq)], probeSeq, maxMismatchPct, ignoreN)
		if sc == 0 {
			continue
		}
		return pos.SeqIndex, st, sc, true
	}
	return 0, 0, 0, false
}

// PlaceSingle implements SF/SR/U: slide the probe read's seed cursor
// forward, and on the first anchored+verified hit, emit an interval
// and stop.
func (e *Engine) PlaceSingle(d Descriptor, read []byte) (SingleResult, bool) {
	probeSeq := read
	strand := Plus
	if d.Single == singleRC {
		probeSeq = seed.RevComp(read)
		strand = Minus
	}
	if r, ok := e.placeSingleProbe(probeSeq, strand); ok {
		return r, true
	}
	if d.SingleFallback {
		rc := seed.RevComp(read)
		return e.placeSingleProbe(rc, Minus)
	}
	return SingleResult{}, false
}

func (e *Engine) placeSingleProbe(probeSeq []byte, strand Strand) (SingleResult, bool) {
	k := e.Index.K
	if len(probeSeq) < k {
		return SingleResult{}, false
	}
	cursor := 0
	for {
		bi, hitCursor, next, found := e.Index.Seed(probeSeq, cursor, e.Step)
		if !found {
			return SingleResult{}, false
		}
		if si, start, _, ok := anchorAt(e.Index, bi, hitCursor, probeSeq, e.MaxMismatchPct, e.IgnoreN, nil); ok {
			return SingleResult{SeqIndex: si, Start: start, End: start + len(probeSeq), Strand: strand}, true
		}
		cursor = next
	}
}

// satisfiesOrder reports whether a candidate mate placement honors
// the mode's mate-order constraint: R1 start <= R2 start + len(R2)
// for inward modes, the mirror comparison for outward modes. first/
// second here are already the caller's R1/R2-ordered starts and
// lengths, not probe-order.
func satisfiesOrder(o orientation, start1, len1, start2, len2 int) bool {
	if o == inward {
		return start1 <= start2+len2
	}
	return start1 >= start2+len2
}

// Place implements the paired policies (ISF/ISR/IU/OSF/OSR/OU) across
// all three modulations (same-sequence default, disjoin cross-sequence,
// -e best-of-N). r1 and r2 are the two mates' raw, unmodified
// sequences; Place decides which one is probed first and whether each
// side is reverse-complemented.
func (e *Engine) Place(d Descriptor, r1, r2 []byte) (PairedResult, bool) {
	if r, ok := e.placeWithProbe(d.Orient, d.Primary, r1, r2); ok {
		return r, true
	}
	if d.Fallback != nil {
		if r, ok := e.placeWithProbe(d.Orient, *d.Fallback, r1, r2); ok {
			return r, true
		}
	}
	return PairedResult{}, false
}

// placeWithProbe runs one probe/orientation combination. p.primaryIsR1
// decides whether R1 or R2 is seeded first; strand1/strand2 always
// label the R1/R2 sides of the final interval regardless of probe
// order, since ISR/OSR probe R2 first but still report R1 as seq1 in
// BEDPE output order.
func (e *Engine) placeWithProbe(o orientation, p probe, r1, r2 []byte) (PairedResult, bool) {
	primary, mate := r1, r2
	if !p.primaryIsR1 {
		primary, mate = r2, r1
	}
	probeA := primary
	if p.rcPrimary {
		probeA = seed.RevComp(primary)
	}
	probeB := mate
	if p.rcMate {
		probeB = seed.RevComp(mate)
	}

	k := e.Index.K
	if len(probeA) < k || len(probeB) < k {
		return PairedResult{}, false
	}

	if e.Eval > 0 {
		return e.placeBestOfN(o, p, probeA, probeB)
	}

	cursor := 0
	for {
		bi, hitCursor, next, found := e.Index.Seed(probeA, cursor, e.Step)
		if !found {
			return PairedResult{}, false
		}

		b := e.Index.LookupByIndex(bi)
		for _, pos := range b.Positions {
			refSeqA := e.Index.Sequences[pos.SeqIndex].Seq
			startA, anchored := seed.Anchor(pos.Offset, hitCursor, len(probeA), len(refSeqA))
			if !anchored {
				continue
			}
			if seed.VerifyScore(refSeqA[startA:startA+len(probeA)], probeA, e.MaxMismatchPct, e.IgnoreN) == 0 {
				continue
			}

			if r, ok := e.placeMate(o, p, pos.SeqIndex, startA, len(probeA), probeB, false); ok {
				return r, true
			}
			if e.Disjoin {
				if r, ok := e.placeMate(o, p, pos.SeqIndex, startA, len(probeA), probeB, true); ok {
					return r, true
				}
			}
		}

		cursor = next
	}
}

// placeMate searches the mate read's own seed anchors for a position
// that both honors seqFilter (same-sequence, or disjoin's directional
// cross-sequence scan) and the mode's mate-order constraint. anchorSeq/
// startA/lenA describe the primary (first-probed) read's placement;
// the result is remapped to R1/R2 slots via p.primaryIsR1 before
// returning, since the primary read is not always R1.
func (e *Engine) placeMate(o orientation, p probe, anchorSeq, startA, lenA int, probeB []byte, cross bool) (PairedResult, bool) {
	var seqFilter func(int) bool
	if cross {
		if o == inward {
			seqFilter = func(si int) bool { return si > anchorSeq }
		} else {
			seqFilter = func(si int) bool { return si < anchorSeq }
		}
	} else {
		seqFilter = func(si int) bool { return si == anchorSeq }
	}

	cursor := 0
	for {
		bi, hitCursor, next, found := e.Index.Seed(probeB, cursor, e.Step)
		if !found {
			return PairedResult{}, false
		}
		b := e.Index.LookupByIndex(bi)
		for _, pos := range b.Positions {
			if !seqFilter(pos.SeqIndex) {
				continue
			}
			si := pos.SeqIndex
			refSeqB := e.Index.Sequences[si].Seq
			startB, anchored := seed.Anchor(pos.Offset, hitCursor, len(probeB), len(refSeqB))
			if !anchored || seed.VerifyScore(refSeqB[startB:startB+len(probeB)], probeB, e.MaxMismatchPct, e.IgnoreN) == 0 {
				continue
			}
			start1, len1, start2, len2 := startA, lenA, startB, len(probeB)
			if !p.primaryIsR1 {
				start1, len1, start2, len2 = startB, len(probeB), startA, lenA
			}
			if !satisfiesOrder(o, start1, len1, start2, len2) {
				continue
			}
			score := 0
			if si != anchorSeq {
				score = 1
			}
			seqIndex1, seqIndex2 := anchorSeq, si
			if !p.primaryIsR1 {
				seqIndex1, seqIndex2 = si, anchorSeq
			}
			return PairedResult{
				SeqIndex1: seqIndex1, Start1: start1, End1: start1 + len1, Strand1: p.strand1,
				SeqIndex2: seqIndex2, Start2: start2, End2: start2 + len2, Strand2: p.strand2,
				Score: score,
			}, true
		}
		cursor = next
	}
}

// placeBestOfN implements -e N: collect up to N same-sequence
// candidates across outer-loop anchors of probeA, score each by the
// combined Hamming distance of both mates, and emit the lowest-scoring
// one. Disjoin is always off here (enforced by config validation), so
// seqFilter is always same-sequence.
func (e *Engine) placeBestOfN(o orientation, p probe, probeA, probeB []byte) (PairedResult, bool) {
	var candidates []candidate
	cursor := 0
	for len(candidates) < e.Eval {
		bi, hitCursor, next, found := e.Index.Seed(probeA, cursor, e.Step)
		if !found {
			break
		}
		b := e.Index.LookupByIndex(bi)
		for _, pos := range b.Positions {
			if len(candidates) >= e.Eval {
				break
			}
			refSeqA := e.Index.Sequences[pos.SeqIndex].Seq
			startA, anchored := seed.Anchor(pos.Offset, hitCursor, len(probeA), len(refSeqA))
			if !anchored {
				continue
			}
			scoreA := seed.VerifyScore(refSeqA[startA:startA+len(probeA)], probeA, e.MaxMismatchPct, e.IgnoreN)
			if scoreA == 0 {
				continue
			}

			seqFilter := func(si int) bool { return si == pos.SeqIndex }
			mcursor := 0
			for {
				mbi, mhit, mnext, mfound := e.Index.Seed(probeB, mcursor, e.Step)
				if !mfound {
					break
				}
				bb := e.Index.LookupByIndex(mbi)
				matched := false
				for _, mpos := range bb.Positions {
					if !seqFilter(mpos.SeqIndex) {
						continue
					}
					refSeqB := e.Index.Sequences[mpos.SeqIndex].Seq
					startB, anchoredB := seed.Anchor(mpos.Offset, mhit, len(probeB), len(refSeqB))
					if !anchoredB {
						continue
					}
					scoreB := seed.VerifyScore(refSeqB[startB:startB+len(probeB)], probeB, e.MaxMismatchPct, e.IgnoreN)
					if scoreB == 0 {
						continue
					}
					start1, len1, start2, len2 := startA, len(probeA), startB, len(probeB)
					if !p.primaryIsR1 {
						start1, len1, start2, len2 = startB, len(probeB), startA, len(probeA)
					}
					if !satisfiesOrder(o, start1, len1, start2, len2) {
						continue
					}
					candidates = append(candidates, candidate{
						result: PairedResult{
							SeqIndex1: pos.SeqIndex, Start1: start1, End1: start1 + len1, Strand1: p.strand1,
							SeqIndex2: pos.SeqIndex, Start2: start2, End2: start2 + len2, Strand2: p.strand2,
							Score: 0,
						},
						score: scoreA + scoreB,
					})
					matched = true
					break
				}
				if matched || len(candidates) >= e.Eval {
					break
				}
				mcursor = mnext
			}
		}
		cursor = next
	}

	if len(candidates) == 0 {
		return PairedResult{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score < best.score {
			best = c
		}
	}
	return best.result, true
}
