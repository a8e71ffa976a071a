// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package testfixture builds small synthetic FASTA/FASTQ files for
// the end-to-end pipeline tests, generalized from muscato_gendat's
// random-base reference/read generator: that tool always wrote whole
// files of random data straight to disk, while these helpers return
// assembled records to the caller so a test can mix deterministic,
// scenario-specific bases with random filler.
package testfixture

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Record is one FASTA sequence.
type Record struct {
	ID  string
	Seq string
}

// FastqRecord is one FASTQ read; Qual defaults to all 'I' when empty.
type FastqRecord struct {
	Name string
	Seq  string
	Qual string
}

// RandomSeq returns a random length-n string over {A,C,G,T}, the same
// four-way uniform distribution muscato_gendat's writeRand used.
func RandomSeq(rng *rand.Rand, n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		switch x := rng.Float64(); {
		case x < 0.25:
			sb.WriteByte('A')
		case x < 0.5:
			sb.WriteByte('T')
		case x < 0.75:
			sb.WriteByte('G')
		default:
			sb.WriteByte('C')
		}
	}
	return sb.String()
}

// WriteFasta writes records as a multi-FASTA file at path, one line
// per sequence (no line wrapping; fixtures are short).
func WriteFasta(path string, records []Record) error {
	var sb strings.Builder
	for _, r := range records {
		fmt.Fprintf(&sb, ">%s\n%s\n", r.ID, r.Seq)
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// WriteFastq writes records as a four-line-per-record FASTQ file at
// path.
func WriteFastq(path string, records []FastqRecord) error {
	var sb strings.Builder
	for _, r := range records {
		qual := r.Qual
		if qual == "" {
			qual = strings.Repeat("I", len(r.Seq))
		}
		fmt.Fprintf(&sb, "@%s\n%s\n+\n%s\n", r.Name, r.Seq, qual)
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
