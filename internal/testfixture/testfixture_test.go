// Copyright 2026, Kerby Shedden and the Pemap contributors.

package testfixture

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomSeqLengthAndAlphabet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := RandomSeq(rng, 50)
	assert.Len(t, s, 50)
	for _, b := range s {
		assert.Contains(t, "ACGT", string(b))
	}
}

func TestWriteFastaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.fasta")
	err := WriteFasta(path, []Record{{ID: "chr1", Seq: "ACGTACGT"}, {ID: "chr2", Seq: "TTTTGGGG"}})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ">chr1\nACGTACGT\n>chr2\nTTTTGGGG\n", string(data))
}

func TestWriteFastqDefaultsQuality(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.fastq")
	err := WriteFastq(path, []FastqRecord{{Name: "read1", Seq: "ACGT"}})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, strings.Contains(string(data), "@read1\nACGT\n+\nIIII\n"))
}
