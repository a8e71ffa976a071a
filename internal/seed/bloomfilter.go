// Copyright 2026, Kerby Shedden and the Pemap contributors.

package seed

import (
	"math/rand"

	"github.com/chmduquesne/rollinghash/buzhash32"
	"github.com/golang-collections/go-datastructures/bitarray"
)

// BloomPrefilter is a whole-reference rolling-hash Bloom sketch, built
// once per k at index-construction time and consulted by Seed ahead of
// the real bucket lookup. It can only produce false positives (which
// fall through to the ordinary binary search unharmed), never false
// negatives, so enabling it never changes accept/reject semantics.
//
// Grounded directly on muscato_screen.go's buildBloom/checkWin
// technique: several independent buzhash32 rolling hashes, each keyed
// by its own random byte-to-uint32 table, set bits in a shared
// bitarray.BitArray. The difference from the teacher's use is scope:
// muscato sketches the *read* collection at a handful of fixed
// offsets and scans target windows against it; this sketches every
// valid k-mer window of the *reference* once, and is queried per read
// window during seeding.
type BloomPrefilter struct {
	bits   bitarray.BitArray
	tables [][256]uint32
	size   uint64
}

// NewBloomPrefilter allocates a sketch sized for roughly expectedKmers
// entries with numHash independent hash functions.
func NewBloomPrefilter(expectedKmers uint64, numHash int) *BloomPrefilter {
	size := expectedKmers * 8
	if size < 1<<20 {
		size = 1 << 20
	}

	tables := make([][256]uint32, numHash)
	for j := range tables {
		seen := make(map[uint32]bool)
		for i := 0; i < 256; i++ {
			for {
				x := uint32(rand.Int63())
				if !seen[x] {
					tables[j][i] = x
					seen[x] = true
					break
				}
			}
		}
	}

	return &BloomPrefilter{
		bits:   bitarray.NewBitArray(size),
		tables: tables,
		size:   size,
	}
}

func (bf *BloomPrefilter) hashes(window []byte) []uint64 {
	out := make([]uint64, len(bf.tables))
	for j, tbl := range bf.tables {
		h := buzhash32.NewFromUint32Array(tbl)
		h.Write(window)
		out[j] = uint64(h.Sum32()) % bf.size
	}
	return out
}

// Add marks window as present in the sketch.
func (bf *BloomPrefilter) Add(window []byte) {
	for _, idx := range bf.hashes(window) {
		bf.bits.SetBit(idx)
	}
}

// MaybeContains reports whether window might be present. A false
// result is a guarantee of absence; a true result must be confirmed by
// the real lookup.
func (bf *BloomPrefilter) MaybeContains(window []byte) bool {
	for _, idx := range bf.hashes(window) {
		set, err := bf.bits.GetBit(idx)
		if err != nil || !set {
			return false
		}
	}
	return true
}
