// Copyright 2026, Kerby Shedden and the Pemap contributors.

package partition

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeRecords(t *testing.T, path string, n int) {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString("@read\n")
		sb.WriteString("ACGT\n")
		sb.WriteString("+\n")
		sb.WriteString("IIII\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPlanSingleWorkerCoversEverything(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "r1.fastq")
	writeRecords(t, r1, 10)

	chunks, err := Plan(r1, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, chunks, 1)
	assert.Equal(t, int64(0), chunks[0].R1StartByte)
	assert.Equal(t, 40, chunks[0].Lines)
}

func TestPlanMultiWorkerLineCountsCoverFile(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "r1.fastq")
	writeRecords(t, r1, 40)

	chunks, err := Plan(r1, "", 4)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, chunks, 4)

	total := 0
	for _, c := range chunks {
		assert.Equal(t, 0, c.Lines%4, "chunk line count must be a multiple of 4")
		total += c.Lines
	}
	assert.Equal(t, 160, total)
}

func TestPlanPairedSynchronizesR2(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "r1.fastq")
	r2 := filepath.Join(dir, "r2.fastq")
	writeRecords(t, r1, 20)
	writeRecords(t, r2, 20)

	chunks, err := Plan(r1, r2, 4)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, chunks, 4)

	total := 0
	for _, c := range chunks {
		total += c.Lines
	}
	assert.Equal(t, 80, total)
}

func TestPlanRejectsNonMultipleOf4(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "r1.fastq")
	if err := os.WriteFile(r1, []byte("@only\nACGT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Plan(r1, "", 2); err == nil {
		t.Fatalf("expected an error for a non-record-aligned file")
	}
}
