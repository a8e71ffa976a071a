// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Command pemap maps paired-end or single-end FASTQ reads against a
// FASTA reference with ungapped ("ungap") seed-and-extend alignment,
// writing BED/BEDPE intervals and the corresponding FASTQ subset.
//
// Mapping fans out across -t worker goroutines, each owning a disjoint,
// record-aligned slice of the input and its own shard files; a final
// pass concatenates those shards, in worker order, into the named
// output files.
//
// Grounded on cmd/muscato/main.go's coordinator shape: a uuid-named
// temp directory per run, a setup/run/cleanup sequence, and a single
// [Error]-prefixed fatal path, adapted from an external FIFO-and-
// exec.Cmd pipeline to one in-process goroutine fan-out.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/profile"

	"github.com/kshedden/pemap/internal/config"
	"github.com/kshedden/pemap/internal/logging"
	"github.com/kshedden/pemap/internal/merge"
	"github.com/kshedden/pemap/internal/partition"
	"github.com/kshedden/pemap/internal/refindex"
	"github.com/kshedden/pemap/internal/worker"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	runDir, err := makeRunDir()
	if err != nil {
		os.Stderr.WriteString("Error setting up run directory, see log files for details.\n")
		fatalNoLog(err)
	}

	coordLog, err := logging.New(runDir, "pemap")
	if err != nil {
		os.Stderr.WriteString("Error in logging setup, see log files for details.\n")
		fatalNoLog(err)
	}
	defer coordLog.Close()

	if !cfg.Quiet {
		fmt.Fprintf(os.Stderr, "pemap: run directory %s\n", runDir)
	}

	if err := run(cfg, runDir, coordLog); err != nil {
		logging.Fatal(coordLog, err)
	}
}

func fatalNoLog(err error) {
	fmt.Fprintf(os.Stderr, "[Error] %v\n", err)
	os.Exit(1)
}

// makeRunDir creates <os.TempDir()>/pemap/<uuid>/ to hold per-worker
// logs and intermediate shards for this invocation only, mirroring
// the teacher's makeTemp's per-run uuid subdirectory. The CPU profile
// directory, when set, is a separate, user-named path handled by
// run()'s own profile.Start call, not this one.
func makeRunDir() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("generating run id: %w", err)
	}
	dir := filepath.Join(os.TempDir(), "pemap", id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory %s: %w", dir, err)
	}
	return dir, nil
}

func run(cfg *config.Config, runDir string, log *logging.Logger) error {
	if cfg.ProfileDir != "" {
		p := profile.Start(profile.ProfilePath(cfg.ProfileDir), profile.CPUProfile)
		defer p.Stop()
	}

	sequences, err := refindex.LoadSequences(cfg.RefFileName, cfg.K, cfg.MaskLower)
	if err != nil {
		return fmt.Errorf("loading reference: %w", err)
	}
	log.Printf("loaded %d reference sequences from %s", len(sequences), cfg.RefFileName)

	ix, err := refindex.LoadOrBuild(cfg.RefFileName, sequences, cfg.K, cfg.BloomPrefilter, cfg.IndexCachePath, log)
	if err != nil {
		return fmt.Errorf("building reference index: %w", err)
	}
	log.Printf("index ready: %d buckets", ix.NumBuckets())

	planFile := cfg.R1FileName
	if planFile == "" {
		planFile = cfg.R2FileName
	}
	var planR2File string
	if cfg.IsPaired() {
		planR2File = cfg.R2FileName
	}
	chunks, err := partition.Plan(planFile, planR2File, cfg.NumWorkers)
	if err != nil {
		return fmt.Errorf("partitioning input: %w", err)
	}
	log.Printf("partitioned input into %d chunks", len(chunks))

	descriptors := make([]worker.Descriptor, len(chunks))
	shards := make([]merge.Shards, len(chunks))
	for i, c := range chunks {
		bedPath, r1Path, r2Path := worker.ShardSet(runDir, i, cfg.CompressShards)
		descriptors[i] = worker.Descriptor{ID: i, Chunk: c, BedPath: bedPath, R1Path: r1Path, R2Path: r2Path}
		if !cfg.NoBed {
			shards[i].BedPath = bedPath
		}
		if !cfg.NoFastq {
			shards[i].R1Path = r1Path
			if cfg.IsPaired() {
				shards[i].R2Path = r2Path
			}
		}
	}

	if err := worker.Run(cfg, ix, descriptors, runDir); err != nil {
		return fmt.Errorf("mapping: %w", err)
	}
	log.Print("all workers finished, merging shards")

	res, err := merge.Outputs(shards, cfg.OutBasename, cfg.CompressShards)
	if err != nil {
		return fmt.Errorf("merging shard output: %w", err)
	}
	removeIfEmpty(res.BedPath)
	removeIfEmpty(res.R1Path)
	removeIfEmpty(res.R2Path)

	log.Print("done")
	return nil
}

// removeIfEmpty implements spec.md §6's "when a final file is zero
// bytes after merge, it is removed" rule.
func removeIfEmpty(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Size() == 0 {
		os.Remove(path)
	}
}
