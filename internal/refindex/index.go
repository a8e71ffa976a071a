// Copyright 2026, Kerby Shedden and the Pemap contributors.

package refindex

import (
	"fmt"
	"sort"

	"github.com/kshedden/pemap/internal/logging"
	"github.com/kshedden/pemap/internal/seed"
)

// Position is a single reference location: sequence index and
// 0-based offset, with 0 <= offset <= len(seq)-k.
type Position struct {
	SeqIndex int
	Offset   int
}

// Bucket holds every reference position sharing one k-mer
// fingerprint. Positions are ordered by (SeqIndex asc, Offset asc).
type Bucket struct {
	ID        uint32
	Positions []Position
}

// Index is the immutable, read-only seed index: the reference
// sequences plus buckets sorted ascending by fingerprint. Safe for
// concurrent use by any number of workers once Build has returned.
type Index struct {
	Sequences []Sequence
	K         int

	buckets   []Bucket
	prefilter *seed.BloomPrefilter
}

type triple struct {
	fp       uint32
	seqIndex int
	offset   int
}

// Build constructs the seed index over sequences for the given k.
// When useBloomPrefilter is set, it also builds a whole-reference
// rolling-hash Bloom sketch (see seed.BloomPrefilter) that Seed
// consults before the binary search.
func Build(sequences []Sequence, k int, useBloomPrefilter bool, log *logging.Logger) (*Index, error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("refindex: no sequences to index")
	}
	for _, s := range sequences {
		if len(s.Seq) < k {
			return nil, fmt.Errorf("refindex: sequence %q shorter than k=%d", s.ID, k)
		}
	}

	if log != nil {
		var lowComplexity int
		for _, s := range sequences {
			lowComplexity += countLowComplexity(s.Seq, k)
		}
		log.Printf("indexing %d sequences, k=%d, %d low-complexity windows (< %d distinct dinucleotides)",
			len(sequences), k, lowComplexity, lowComplexityThreshold)
	}

	var triples []triple

	for si, s := range sequences {
		for off := 0; off+k <= len(s.Seq); off++ {
			window := s.Seq[off : off+k]
			fp := seed.Fingerprint(window)
			if fp == seed.Sentinel {
				continue
			}
			triples = append(triples, triple{fp: fp, seqIndex: si, offset: off})
		}
	}
	if len(triples) == 0 {
		return nil, fmt.Errorf("refindex: no valid k-mers found for k=%d", k)
	}

	// A full three-key sort determines bucket membership and the
	// required (SeqIndex, Offset) order within each bucket
	// directly, so any sort algorithm works here; the source's
	// mandatory merge sort existed only because it sorted by
	// fingerprint alone and relied on sort stability to preserve
	// the stream's pre-existing (SeqIndex, Offset) order.
	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if a.fp != b.fp {
			return a.fp < b.fp
		}
		if a.seqIndex != b.seqIndex {
			return a.seqIndex < b.seqIndex
		}
		return a.offset < b.offset
	})

	var buckets []Bucket
	for i := 0; i < len(triples); {
		j := i + 1
		for j < len(triples) && triples[j].fp == triples[i].fp {
			j++
		}
		positions := make([]Position, j-i)
		for n := i; n < j; n++ {
			positions[n-i] = Position{SeqIndex: triples[n].seqIndex, Offset: triples[n].offset}
		}
		buckets = append(buckets, Bucket{ID: triples[i].fp, Positions: positions})
		i = j
	}

	ix := &Index{
		Sequences: sequences,
		K:         k,
		buckets:   buckets,
	}

	if useBloomPrefilter {
		bf := seed.NewBloomPrefilter(uint64(len(triples)), 4)
		for _, s := range sequences {
			for off := 0; off+k <= len(s.Seq); off++ {
				window := s.Seq[off : off+k]
				if seed.Fingerprint(window) == seed.Sentinel {
					continue
				}
				bf.Add(window)
			}
		}
		ix.prefilter = bf
	}

	return ix, nil
}

// NumBuckets returns the number of distinct fingerprints in the index.
func (ix *Index) NumBuckets() int { return len(ix.buckets) }

// LookupByIndex exposes buckets[i] directly.
func (ix *Index) LookupByIndex(i int) *Bucket { return &ix.buckets[i] }

// LookupFingerprint resolves fp to a bucket index via binary search,
// O(log NumBuckets()). It satisfies seed.BucketSource.
func (ix *Index) LookupFingerprint(fp uint32) (int, bool) {
	i := sort.Search(len(ix.buckets), func(i int) bool { return ix.buckets[i].ID >= fp })
	if i < len(ix.buckets) && ix.buckets[i].ID == fp {
		return i, true
	}
	return 0, false
}

// Prefilter returns the Bloom pre-filter built during Build, or nil if
// none was requested.
func (ix *Index) Prefilter() *seed.BloomPrefilter { return ix.prefilter }

// Seed is a convenience wrapper around seed.Seed bound to this index
// and its (possibly absent) Bloom pre-filter.
func (ix *Index) Seed(read []byte, cursor, step int) (bucketIndex, hitCursor, nextCursor int, found bool) {
	var pre seed.Prefilter
	if ix.prefilter != nil {
		pre = ix.prefilter
	}
	return seed.Seed(read, cursor, step, ix.K, ix, pre)
}
