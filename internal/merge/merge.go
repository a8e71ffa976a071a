// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package merge concatenates per-worker shard files into the three
// final pemap outputs (<out>.bed, <out>_R1.fastq, <out>_R2.fastq),
// decompressing snappy-framed shards as it goes, and installs each
// final file atomically so a reader never observes a partially
// written result.
//
// Grounded on the teacher's own shard-then-combine shape
// (muscato_combine_windows concatenates per-worker match shards into
// one sorted result) generalized from "pipe through sort -u" to a
// plain ordered concatenation, since pemap's shards are already
// disjoint by construction and need no deduplication.
package merge

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/natefinch/atomic"
)

// Shards names the three per-worker shard paths produced by one
// worker, mirroring worker.ShardSet's return values.
type Shards struct {
	BedPath string
	R1Path  string
	R2Path  string
}

// Result names the three final output paths this package writes.
type Result struct {
	BedPath string
	R1Path  string
	R2Path  string
}

// Outputs concatenates all shards, in worker order, into the three
// final files named from outBasename, and removes the shard files
// once their contents are safely installed. compressed indicates
// whether the FASTQ shard files are snappy-framed (--compress-shards);
// BED shards are always read as plain text, and the final files are
// always written as plain text regardless.
//
// Empty shards (a worker placed nothing, or NoBed/NoFastq suppressed
// a stream) are skipped rather than erroring: concatenating zero
// files for a stream that was never produced yields a correctly empty
// or absent final file.
func Outputs(shards []Shards, outBasename string, compressed bool) (Result, error) {
	res := Result{
		BedPath: outBasename + ".bed",
		R1Path:  outBasename + "_R1.fastq",
		R2Path:  outBasename + "_R2.fastq",
	}

	bedPaths := make([]string, 0, len(shards))
	r1Paths := make([]string, 0, len(shards))
	r2Paths := make([]string, 0, len(shards))
	for _, s := range shards {
		if s.BedPath != "" {
			bedPaths = append(bedPaths, s.BedPath)
		}
		if s.R1Path != "" {
			r1Paths = append(r1Paths, s.R1Path)
		}
		if s.R2Path != "" {
			r2Paths = append(r2Paths, s.R2Path)
		}
	}

	if err := concatInto(res.BedPath, bedPaths, false); err != nil {
		return Result{}, fmt.Errorf("merge: bed output: %w", err)
	}
	if err := concatInto(res.R1Path, r1Paths, compressed); err != nil {
		return Result{}, fmt.Errorf("merge: R1 output: %w", err)
	}
	if err := concatInto(res.R2Path, r2Paths, compressed); err != nil {
		return Result{}, fmt.Errorf("merge: R2 output: %w", err)
	}

	for _, p := range append(append(bedPaths, r1Paths...), r2Paths...) {
		os.Remove(p)
	}

	return res, nil
}

// concatInto streams every path in paths, in order, into a pipe that
// atomic.WriteFile installs as finalPath in one rename. An empty
// paths list still produces an empty finalPath, matching the "no
// shard wrote this stream" case (--no-bed, --no-fastq, or no R2
// input) rather than leaving a stale or missing file.
func concatInto(finalPath string, paths []string, compressed bool) error {
	pr, pw := io.Pipe()

	errc := make(chan error, 1)
	go func() {
		errc <- atomic.WriteFile(finalPath, pr)
	}()

	bw := bufio.NewWriterSize(pw, 1<<20)
	for _, p := range paths {
		if err := appendShard(bw, p, compressed); err != nil {
			pw.CloseWithError(err)
			<-errc
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		pw.CloseWithError(err)
		<-errc
		return err
	}
	pw.Close()

	return <-errc
}

func appendShard(dst io.Writer, path string, compressed bool) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening shard %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		r = snappy.NewReader(f)
	}
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("reading shard %s: %w", path, err)
	}
	return nil
}
