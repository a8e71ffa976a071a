// Copyright 2026, Kerby Shedden and the Pemap contributors.

package worker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kshedden/pemap/internal/config"
	"github.com/kshedden/pemap/internal/partition"
	"github.com/kshedden/pemap/internal/refindex"
)

const testRefSeq = "ACGTACGGTTCAGGTCAATGGCATCGATCGTAGCTAGGGATCGTAACGTTAGGCATGCATTACGGATCGATCGGCTAGCATG"

func buildTestIndex(t *testing.T) *refindex.Index {
	t.Helper()
	ix, err := refindex.Build([]refindex.Sequence{{ID: "chr1", Seq: []byte(testRefSeq)}}, 11, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

func writeFastqFile(t *testing.T, path string, name, seq string) {
	t.Helper()
	qual := strings.Repeat("I", len(seq))
	content := "@" + name + "\n" + seq + "\n+\n" + qual + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunOneSingleEndMapped(t *testing.T) {
	dir := t.TempDir()
	ix := buildTestIndex(t)

	r1Path := filepath.Join(dir, "r1.fastq")
	// Exact substring of the reference, should map with SF.
	writeFastqFile(t, r1Path, "read1", testRefSeq[10:40])

	cfg := &config.Config{
		R1FileName:     r1Path,
		Library:        config.SF,
		MaxMismatchPct: 15,
		SeedStep:       5,
		K:              11,
	}

	chunks, err := partition.Plan(r1Path, "", 1)
	if err != nil {
		t.Fatal(err)
	}

	d := Descriptor{ID: 0, Chunk: chunks[0]}
	d.BedPath, d.R1Path, d.R2Path = ShardSet(dir, 0, false)

	if err := runOne(cfg, ix, d, ""); err != nil {
		t.Fatal(err)
	}

	bedData, err := os.ReadFile(d.BedPath)
	if err != nil {
		t.Fatal(err)
	}
	fields := strings.Fields(strings.TrimSpace(string(bedData)))
	assert.Equal(t, "chr1", fields[0])
	assert.Equal(t, "10", fields[1])
	assert.Equal(t, "40", fields[2])
	assert.Equal(t, "read1", fields[3])

	fastqData, err := os.ReadFile(d.R1Path)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, strings.Contains(string(fastqData), "read1"))
}

func TestRunOneSingleEndDiffWritesNonMapped(t *testing.T) {
	dir := t.TempDir()
	ix := buildTestIndex(t)

	r1Path := filepath.Join(dir, "r1.fastq")
	writeFastqFile(t, r1Path, "nomatch", "TTTTTTTTTTTTTTTTTTTTTTTTTTTTTT")

	cfg := &config.Config{
		R1FileName:     r1Path,
		Library:        config.SF,
		MaxMismatchPct: 5,
		SeedStep:       5,
		K:              11,
		Diff:           true,
	}

	chunks, err := partition.Plan(r1Path, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	d := Descriptor{ID: 0, Chunk: chunks[0]}
	d.BedPath, d.R1Path, d.R2Path = ShardSet(dir, 0, false)

	if err := runOne(cfg, ix, d, ""); err != nil {
		t.Fatal(err)
	}

	bedData, err := os.ReadFile(d.BedPath)
	if err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, strings.TrimSpace(string(bedData)))

	fastqData, err := os.ReadFile(d.R1Path)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, strings.Contains(string(fastqData), "nomatch"))
}

func TestRunOnePairedInward(t *testing.T) {
	dir := t.TempDir()
	ix := buildTestIndex(t)

	r1Path := filepath.Join(dir, "r1.fastq")
	r2Path := filepath.Join(dir, "r2.fastq")

	fwd := testRefSeq[5:35]
	rc := revComp([]byte(testRefSeq[50:80]))
	writeFastqFile(t, r1Path, "pair1", fwd)
	writeFastqFile(t, r2Path, "pair1", string(rc))

	cfg := &config.Config{
		R1FileName:     r1Path,
		R2FileName:     r2Path,
		Library:        config.ISF,
		MaxMismatchPct: 15,
		SeedStep:       5,
		K:              11,
	}

	chunks, err := partition.Plan(r1Path, r2Path, 1)
	if err != nil {
		t.Fatal(err)
	}
	d := Descriptor{ID: 0, Chunk: chunks[0]}
	d.BedPath, d.R1Path, d.R2Path = ShardSet(dir, 0, false)

	if err := runOne(cfg, ix, d, ""); err != nil {
		t.Fatal(err)
	}

	bedData, err := os.ReadFile(d.BedPath)
	if err != nil {
		t.Fatal(err)
	}
	fields := strings.Fields(strings.TrimSpace(string(bedData)))
	assert.Equal(t, "chr1", fields[0])
	assert.Equal(t, "5", fields[1])
	assert.Equal(t, "chr1", fields[3])
	assert.Equal(t, "pair1", fields[6])
}

func revComp(s []byte) []byte {
	out := make([]byte, len(s))
	for i, b := range s {
		var c byte
		switch b {
		case 'A':
			c = 'T'
		case 'C':
			c = 'G'
		case 'G':
			c = 'C'
		case 'T':
			c = 'A'
		default:
			c = b
		}
		out[len(s)-1-i] = c
	}
	return out
}
