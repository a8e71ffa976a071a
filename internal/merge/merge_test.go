// Copyright 2026, Kerby Shedden and the Pemap contributors.

package merge

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
)

func TestOutputsConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()

	shards := make([]Shards, 3)
	for i := range shards {
		bedPath := filepath.Join(dir, "shard"+string(rune('0'+i))+".bed")
		r1Path := filepath.Join(dir, "shard"+string(rune('0'+i))+"_R1.fastq")
		if err := os.WriteFile(bedPath, []byte("line"+string(rune('0'+i))+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(r1Path, []byte("@r"+string(rune('0'+i))+"\nACGT\n+\nIIII\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		shards[i] = Shards{BedPath: bedPath, R1Path: r1Path}
	}

	out := filepath.Join(dir, "final")
	res, err := Outputs(shards, out, false)
	if err != nil {
		t.Fatal(err)
	}

	bedData, err := os.ReadFile(res.BedPath)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "line0\nline1\nline2\n", string(bedData))

	r1Data, err := os.ReadFile(res.R1Path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "@r0\nACGT\n+\nIIII\n@r1\nACGT\n+\nIIII\n@r2\nACGT\n+\nIIII\n", string(r1Data))

	for _, s := range shards {
		assert.NoFileExists(t, s.BedPath)
		assert.NoFileExists(t, s.R1Path)
	}
}

func TestOutputsSkipsMissingShards(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "final")

	res, err := Outputs(nil, out, false)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(res.BedPath)
	if err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, data)
}

func TestOutputsDecompressesCompressedShards(t *testing.T) {
	dir := t.TempDir()

	// Only FASTQ shards are ever snappy-framed; BED shards stay plain.
	r1Path := filepath.Join(dir, "shard0_R1.fastq.sz")
	f, err := os.Create(r1Path)
	if err != nil {
		t.Fatal(err)
	}
	sw := snappy.NewBufferedWriter(f)
	if _, err := sw.Write([]byte("@read1\nACGT\n+\nIIII\n")); err != nil {
		t.Fatal(err)
	}
	if err := sw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "final")
	res, err := Outputs([]Shards{{R1Path: r1Path}}, out, true)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(res.R1Path)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, bytes.Equal(data, []byte("@read1\nACGT\n+\nIIII\n")))
}
