// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package config parses the pemap command line into a read-only
// Config value that is shared across the reference index build and
// every mapping worker.
package config

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

// Mode is one of the nine library orientation modes.
type Mode string

const (
	ISF Mode = "ISF"
	ISR Mode = "ISR"
	IU  Mode = "IU"
	OSF Mode = "OSF"
	OSR Mode = "OSR"
	OU  Mode = "OU"
	SF  Mode = "SF"
	SR  Mode = "SR"
	U   Mode = "U"
)

// pairedModes require both R1 and R2.
var pairedModes = map[Mode]bool{
	ISF: true, ISR: true, IU: true, OSF: true, OSR: true, OU: true,
}

var singleModes = map[Mode]bool{
	SF: true, SR: true, U: true,
}

// Config is the immutable, read-only set of parameters threaded
// through index construction, every worker, and the merger. It is
// built once by ParseFlags and never mutated afterwards, matching the
// "read-only configuration value passed by reference" design note.
type Config struct {
	// RefFileName is the FASTA reference (may be gzip-compressed).
	RefFileName string

	// R1FileName and R2FileName are the FASTQ input streams. At
	// least one must be set; which one(s) depends on Library.
	R1FileName string
	R2FileName string

	// OutBasename names the three output files:
	// <OutBasename>_R1.fastq, <OutBasename>_R2.fastq, <OutBasename>.bed
	OutBasename string

	// Library selects one of the nine orientation modes.
	Library Mode

	// Diff, when true, writes non-mapped reads to FASTQ instead
	// of mapped reads, and suppresses BED/BEDPE output.
	Diff bool

	// Disjoin permits mate placement on a different reference
	// sequence. Forced off by Eval > 0.
	Disjoin bool

	// IgnoreN, when true, skips reference-N positions in Verify
	// instead of counting them as mismatches.
	IgnoreN bool

	// MaskLower preserves the original case of the reference
	// instead of uppercasing it.
	MaskLower bool

	// NoBed and NoFastq suppress their respective outputs.
	NoBed   bool
	NoFastq bool

	// Quiet suppresses progress logging to stderr.
	Quiet bool

	// Eval is the best-of-N candidate count for paired modes.
	// Eval > 0 forces Disjoin off.
	Eval int

	// K is the seed k-mer size, one of {9, 11, 13, 15}.
	K int

	// MaxMismatchPct is the maximum percentage of mismatched
	// bases tolerated by Verify, in [0, 99].
	MaxMismatchPct int

	// SeedStep is the number of read positions Seed advances by
	// between anchor attempts.
	SeedStep int

	// NumWorkers is the number of goroutine workers sharing the
	// reference index.
	NumWorkers int

	// IndexCachePath, when non-empty, persists/reuses the built
	// seed index via a modernc.org/kv-backed cache keyed by a
	// hash of the reference file and K.
	IndexCachePath string

	// BloomPrefilter enables the rolling-hash Bloom pre-check
	// ahead of bucket binary search.
	BloomPrefilter bool

	// CompressShards snappy-compresses intermediate FASTQ worker
	// shards (BED shards stay plain text); final merged outputs are
	// always plain text.
	CompressShards bool

	// ProfileDir, when non-empty, writes a CPU profile for the
	// mapping phase to this directory.
	ProfileDir string
}

// longFlagNames lists the flags the CLI contract (§6) documents as
// single-dash multi-character tokens, e.g. "-R1 <path>". pflag parses
// any single-dash token as a run of one-character shorthands, so
// "-R1" would otherwise be read as shorthand "R" followed by a bogus
// shorthand "1" rather than the long flag "R1". normalizeLongFlags
// rewrites just these names to their "--" form before fs.Parse sees
// them; every other flag's shorthand (-i, -o, -l, ...) is untouched.
var longFlagNames = map[string]bool{
	"R1": true,
	"R2": true,
}

// normalizeLongFlags rewrites "-R1"/"-R1=x" (and "-R2"/"-R2=x") to
// their "--R1"/"--R2" long form so the mandatory single-dash CLI
// syntax from the spec actually reaches pflag as the long flag it
// names, not as shorthand.
func normalizeLongFlags(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' && a[1] != '-' {
			name, rest, hasEq := strings.Cut(a[1:], "=")
			if longFlagNames[name] {
				if hasEq {
					a = "--" + name + "=" + rest
				} else {
					a = "--" + name
				}
			}
		}
		out[i] = a
	}
	return out
}

// ParseFlags parses os.Args[1:] (or args, for testing) into a Config,
// validates the mandatory/optional contract from the CLI spec, and
// returns a usage error (never a panic) on misconfiguration so the
// caller can print usage and exit 1.
func ParseFlags(args []string) (*Config, error) {
	fs := flag.NewFlagSet("pemap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	args = normalizeLongFlags(args)

	ref := fs.StringP("reference", "i", "", "FASTA reference (may be gzip-compressed)")
	r1 := fs.String("R1", "", "FASTQ R1 input")
	r2 := fs.String("R2", "", "FASTQ R2 input")
	out := fs.StringP("out", "o", "", "output basename")
	lib := fs.StringP("library", "l", "", "library mode: ISF, ISR, IU, OSF, OSR, OU, SF, SR, U")

	diff := fs.Bool("diff", false, "write non-mapped reads to FASTQ instead of mapped reads")
	disjoin := fs.Bool("disjoin", false, "permit mate placement on a different reference sequence")
	ignoreN := fs.Bool("ignore_N", false, "skip reference-N positions when scoring mismatches")
	maskLower := fs.Bool("mask-lower", false, "preserve original reference case instead of uppercasing")
	noBed := fs.Bool("no-bed", false, "do not write BED/BEDPE output")
	noFastq := fs.Bool("no-fastq", false, "do not write FASTQ output")
	quiet := fs.Bool("quiet", false, "suppress progress logging")

	eval := fs.IntP("eval", "e", 0, "best-of-N candidate evaluation (N>0 forces --disjoin off)")
	k := fs.IntP("kmer", "k", 15, "seed k-mer size: 9, 11, 13, or 15")
	mm := fs.IntP("mismatch-pct", "m", 15, "maximum mismatch percentage, 0-99")
	step := fs.IntP("step", "s", 17, "seed step size")
	threads := fs.IntP("threads", "t", 1, "number of worker goroutines")

	indexCache := fs.String("index-cache", "", "path to a persisted seed index cache")
	bloomPrefilter := fs.Bool("bloom-prefilter", false, "enable rolling-hash Bloom pre-check ahead of bucket lookup")
	compressShards := fs.Bool("compress-shards", false, "snappy-compress intermediate worker shards")
	profileDir := fs.String("profile", "", "write a CPU profile for the mapping phase to this directory")

	help := fs.BoolP("help", "h", false, "print usage and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *help {
		fs.Usage()
		return nil, fmt.Errorf("usage requested")
	}

	c := &Config{
		RefFileName:    *ref,
		R1FileName:     *r1,
		R2FileName:     *r2,
		OutBasename:    *out,
		Library:        Mode(*lib),
		Diff:           *diff,
		Disjoin:        *disjoin,
		IgnoreN:        *ignoreN,
		MaskLower:      *maskLower,
		NoBed:          *noBed,
		NoFastq:        *noFastq,
		Quiet:          *quiet,
		Eval:           *eval,
		K:              *k,
		MaxMismatchPct: *mm,
		SeedStep:       *step,
		NumWorkers:     *threads,
		IndexCachePath: *indexCache,
		BloomPrefilter: *bloomPrefilter,
		CompressShards: *compressShards,
		ProfileDir:     *profileDir,
	}

	if err := c.validate(); err != nil {
		fs.Usage()
		return nil, err
	}

	if c.Eval > 0 && c.Disjoin {
		os.Stderr.WriteString("[Warning] -e forces --disjoin off\n")
		c.Disjoin = false
	}

	return c, nil
}

func (c *Config) validate() error {
	if c.RefFileName == "" {
		return fmt.Errorf("-i (reference FASTA) is required")
	}
	if c.OutBasename == "" {
		return fmt.Errorf("-o (output basename) is required")
	}
	if c.Library == "" {
		return fmt.Errorf("-l (library mode) is required")
	}
	if !pairedModes[c.Library] && !singleModes[c.Library] {
		return fmt.Errorf("unrecognized library mode %q", c.Library)
	}
	if pairedModes[c.Library] {
		if c.R1FileName == "" || c.R2FileName == "" {
			return fmt.Errorf("library mode %s requires both -R1 and -R2", c.Library)
		}
	} else {
		if c.R1FileName == "" && c.R2FileName == "" {
			return fmt.Errorf("library mode %s requires -R1 and/or -R2", c.Library)
		}
	}
	switch c.K {
	case 9, 11, 13, 15:
	default:
		return fmt.Errorf("-k must be one of 9, 11, 13, 15, got %d", c.K)
	}
	if c.MaxMismatchPct < 0 || c.MaxMismatchPct > 99 {
		return fmt.Errorf("-m must be in [0, 99], got %d", c.MaxMismatchPct)
	}
	if c.SeedStep < 1 {
		return fmt.Errorf("-s must be >= 1, got %d", c.SeedStep)
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("-t must be >= 1, got %d", c.NumWorkers)
	}
	if c.Eval < 0 {
		return fmt.Errorf("-e must be >= 0, got %d", c.Eval)
	}
	if c.Diff && !c.NoBed {
		os.Stderr.WriteString("[Warning] --diff with BED output enabled: non-mapped reads have no interval, BED output will be empty\n")
	}
	return nil
}

// IsPaired reports whether Library requires both mates.
func (c *Config) IsPaired() bool {
	return pairedModes[c.Library]
}

// HasR1 and HasR2 report which mate streams are configured, used by
// the single-end modes that accept either one.
func (c *Config) HasR1() bool { return c.R1FileName != "" }
func (c *Config) HasR2() bool { return c.R2FileName != "" }
