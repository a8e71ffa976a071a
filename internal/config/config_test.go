// Copyright 2026, Kerby Shedden and the Pemap contributors.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseArgs(extra ...string) []string {
	args := []string{"-i", "ref.fasta", "-o", "out", "-l", "SF", "-R1", "r1.fastq"}
	return append(args, extra...)
}

func TestParseFlagsAcceptsMinimalSingleEnd(t *testing.T) {
	cfg, err := ParseFlags(baseArgs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, SF, cfg.Library)
	assert.Equal(t, "ref.fasta", cfg.RefFileName)
	assert.Equal(t, "r1.fastq", cfg.R1FileName)
	assert.Equal(t, 15, cfg.K)
	assert.Equal(t, 1, cfg.NumWorkers)
}

// TestParseFlagsSingleDashR1R2 drives ParseFlags with the exact
// os.Args[1:]-shaped slice a shell produces for the CLI syntax the
// mandatory-flags contract documents ("-R1 <path>", "-R2 <path>"),
// not the "--R1"/"--R2" form. R1/R2 have no pflag shorthand, so
// without argv normalization pflag reads "-R1" as shorthand "R"
// followed by bogus shorthand "1" and fails; this test pins the fix.
func TestParseFlagsSingleDashR1R2(t *testing.T) {
	osArgs := []string{"-i", "ref.fasta", "-o", "out", "-l", "ISF", "-R1", "r1.fastq", "-R2", "r2.fastq"}
	cfg, err := ParseFlags(osArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, "r1.fastq", cfg.R1FileName)
	assert.Equal(t, "r2.fastq", cfg.R2FileName)

	cfg, err = ParseFlags([]string{"-i", "ref.fasta", "-o", "out", "-l", "ISF", "--R1", "r1.fastq", "--R2", "r2.fastq"})
	if err != nil {
		t.Fatalf("unexpected error with long-flag form: %v", err)
	}
	assert.Equal(t, "r1.fastq", cfg.R1FileName)
	assert.Equal(t, "r2.fastq", cfg.R2FileName)
}

func TestParseFlagsRejectsMissingReference(t *testing.T) {
	_, err := ParseFlags([]string{"-o", "out", "-l", "SF", "-R1", "r1.fastq"})
	assert.Error(t, err)
}

func TestParseFlagsRejectsPairedModeMissingR2(t *testing.T) {
	_, err := ParseFlags([]string{"-i", "ref.fasta", "-o", "out", "-l", "ISF", "-R1", "r1.fastq"})
	assert.Error(t, err)
}

func TestParseFlagsRejectsBadK(t *testing.T) {
	_, err := ParseFlags(baseArgs("-k", "10"))
	assert.Error(t, err)
}

func TestParseFlagsRejectsUnrecognizedLibrary(t *testing.T) {
	_, err := ParseFlags([]string{"-i", "ref.fasta", "-o", "out", "-l", "BOGUS", "-R1", "r1.fastq"})
	assert.Error(t, err)
}

func TestParseFlagsEvalForcesDisjoinOff(t *testing.T) {
	cfg, err := ParseFlags([]string{
		"-i", "ref.fasta", "-o", "out", "-l", "ISF",
		"-R1", "r1.fastq", "-R2", "r2.fastq",
		"--disjoin", "-e", "3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 3, cfg.Eval)
	assert.False(t, cfg.Disjoin)
}

func TestIsPaired(t *testing.T) {
	cfg := &Config{Library: ISF}
	assert.True(t, cfg.IsPaired())
	cfg.Library = SF
	assert.False(t, cfg.IsPaired())
}
