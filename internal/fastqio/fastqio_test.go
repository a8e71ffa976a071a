// Copyright 2026, Kerby Shedden and the Pemap contributors.

package fastqio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"@read1", "read1"},
		{"@read1 extra info", "read1"},
		{"@read1\tbarcode=ACGT", "read1"},
		{"@read1\n", "read1"},
	}
	for _, c := range cases {
		got := string(TrimName([]byte(c.in)))
		assert.Equal(t, c.want, got)
	}
}

func TestReaderNextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.fastq")
	content := "@r1\nACGTACGT\n+\nIIIIIIII\n@r2\nTTTTAAAA\n+\nIIIIIIII\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := NewReader(f, 0)
	if err != nil {
		t.Fatal(err)
	}

	rec, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "@r1", string(rec.Header))
	assert.Equal(t, "ACGTACGT", string(rec.Seq))
	assert.Equal(t, "IIIIIIII", string(rec.Qual))

	rec, err = r.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "@r2", string(rec.Header))

	if _, err := r.Next(); err == nil {
		t.Fatalf("expected EOF after two records")
	}
}

func TestReaderSeeksToStartByte(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.fastq")
	rec1 := "@r1\nACGTACGT\n+\nIIIIIIII\n"
	rec2 := "@r2\nTTTTAAAA\n+\nIIIIIIII\n"
	if err := os.WriteFile(path, []byte(rec1+rec2), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := NewReader(f, int64(len(rec1)))
	if err != nil {
		t.Fatal(err)
	}

	rec, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "@r2", string(rec.Header))
}

func TestWriterPlainAndCompressed(t *testing.T) {
	for _, compress := range []bool{false, true} {
		dir := t.TempDir()
		path := filepath.Join(dir, "shard.fastq")

		w, err := NewWriter(path, compress)
		if err != nil {
			t.Fatal(err)
		}
		rec := &Record{Header: []byte("@r1"), Seq: []byte("ACGT"), Plus: []byte("+"), Qual: []byte("IIII")}
		if err := w.WriteRecord(rec); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		assert.Greater(t, info.Size(), int64(0))
	}
}
