// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package worker runs one partitioned slice of the input read stream(s)
// against the shared reference index and the selected placement
// policy, writing its own shard files. Workers never communicate:
// each owns its input seek position, its three shard writers, and its
// per-record scratch state exclusively.
//
// Grounded on muscato_screen.go's processseq/search concurrency
// shape (a semaphore-bounded pool of goroutines reporting through an
// error channel, joined with a sync.WaitGroup) generalized from N
// identical goroutines racing a shared hit channel to N goroutines
// each owning disjoint input and output files, since here the whole
// point of partitioning is that workers need not rendezvous at all
// until the final merge.
package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kshedden/pemap/internal/bedio"
	"github.com/kshedden/pemap/internal/config"
	"github.com/kshedden/pemap/internal/fastqio"
	"github.com/kshedden/pemap/internal/logging"
	"github.com/kshedden/pemap/internal/partition"
	"github.com/kshedden/pemap/internal/placement"
	"github.com/kshedden/pemap/internal/refindex"
)

// Descriptor is the read-only parameter bundle and shard path set for
// one worker, mirroring spec.md's Worker descriptor data type.
type Descriptor struct {
	ID      int
	Chunk   partition.Chunk
	BedPath string
	R1Path  string
	R2Path  string
}

// ShardSet names the three shard paths produced for worker id in dir.
// The two FASTQ shards get the .sz suffix when compress is set; the
// BED shard is always plain text and never gets the suffix.
func ShardSet(dir string, id int, compress bool) (bedPath, r1Path, r2Path string) {
	suffix := ""
	if compress {
		suffix = ".sz"
	}
	bedPath = filepath.Join(dir, fmt.Sprintf("shard_%05d.bed", id))
	r1Path = filepath.Join(dir, fmt.Sprintf("shard_%05d_R1.fastq%s", id, suffix))
	r2Path = filepath.Join(dir, fmt.Sprintf("shard_%05d_R2.fastq%s", id, suffix))
	return
}

// Run executes all of descriptors concurrently against ix, one
// goroutine per worker, and returns the first error encountered (if
// any worker failed, the others still run to completion so partial
// shards are all accounted for or cleaned up by the caller).
func Run(cfg *config.Config, ix *refindex.Index, descriptors []Descriptor, logDir string) error {
	errc := make(chan error, len(descriptors))
	var wg sync.WaitGroup
	wg.Add(len(descriptors))

	for _, d := range descriptors {
		d := d
		go func() {
			defer wg.Done()
			if err := runOne(cfg, ix, d, logDir); err != nil {
				errc <- fmt.Errorf("worker %d: %w", d.ID, err)
			}
		}()
	}

	wg.Wait()
	close(errc)

	for err := range errc {
		return err
	}
	return nil
}

func runOne(cfg *config.Config, ix *refindex.Index, d Descriptor, logDir string) error {
	var log *logging.Logger
	if logDir != "" {
		l, err := logging.New(logDir, fmt.Sprintf("worker_%05d", d.ID))
		if err != nil {
			return err
		}
		defer l.Close()
		log = l
	}

	desc, ok := placement.Descriptors[string(cfg.Library)]
	if !ok {
		return fmt.Errorf("unrecognized library mode %q", cfg.Library)
	}

	engine := &placement.Engine{
		Index:          ix,
		MaxMismatchPct: cfg.MaxMismatchPct,
		IgnoreN:        cfg.IgnoreN,
		Step:           cfg.SeedStep,
		Disjoin:        cfg.Disjoin,
		Eval:           cfg.Eval,
	}

	var bedW *bedio.Writer
	if !cfg.NoBed {
		w, err := bedio.NewWriter(d.BedPath)
		if err != nil {
			return err
		}
		defer w.Close()
		bedW = w
	}

	var r1W, r2W *fastqio.Writer
	if !cfg.NoFastq {
		w, err := fastqio.NewWriter(d.R1Path, cfg.CompressShards)
		if err != nil {
			return err
		}
		defer w.Close()
		r1W = w
		if cfg.IsPaired() {
			w2, err := fastqio.NewWriter(d.R2Path, cfg.CompressShards)
			if err != nil {
				return err
			}
			defer w2.Close()
			r2W = w2
		}
	}

	// The partitioner's Chunk.R1StartByte always refers to whichever
	// single file the chunk was planned against: cfg.R1FileName for
	// paired modes and for single-end modes fed an R1 file, or
	// cfg.R2FileName for single-end modes fed only an R2 file.
	primaryPath, usingR1File := cfg.R1FileName, true
	if primaryPath == "" {
		primaryPath, usingR1File = cfg.R2FileName, false
	}

	f1, err := os.Open(primaryPath)
	if err != nil {
		return err
	}
	defer f1.Close()
	r1, err := fastqio.NewReader(f1, d.Chunk.R1StartByte)
	if err != nil {
		return err
	}

	var r2 *fastqio.Reader
	if desc.Paired {
		f2, err := os.Open(cfg.R2FileName)
		if err != nil {
			return err
		}
		defer f2.Close()
		r2, err = fastqio.NewReader(f2, d.Chunk.R2StartByte)
		if err != nil {
			return err
		}
	}

	records := d.Chunk.Lines / 4
	var processed int
	if log != nil {
		log.Printf("starting, %d records assigned", records)
	}

	for i := 0; i < records; i++ {
		rec1, err := r1.Next()
		if err != nil {
			return fmt.Errorf("reading record %d: %w", i, err)
		}
		var rec2 *fastqio.Record
		if r2 != nil {
			rec2, err = r2.Next()
			if err != nil {
				return fmt.Errorf("reading R2 record %d: %w", i, err)
			}
		}

		if err := processRecord(cfg, engine, desc, ix, rec1, rec2, usingR1File, bedW, r1W, r2W); err != nil {
			return err
		}
		processed++
	}

	if log != nil {
		log.Printf("finished, %d records processed", processed)
	}
	return nil
}

// processRecord runs the selected mode's Placement Policy on one
// record (pair) and applies §4.4's output policy: interval output
// only on a successful, non-diff placement; FASTQ output holds mapped
// reads normally and non-mapped reads under --diff, never both for
// the same record.
func processRecord(cfg *config.Config, e *placement.Engine, desc placement.Descriptor, ix *refindex.Index, rec1, rec2 *fastqio.Record, usingR1File bool, bedW *bedio.Writer, r1W, r2W *fastqio.Writer) error {
	name := fastqio.TrimName(rec1.Header)

	if desc.Paired {
		result, mapped := e.Place(desc, rec1.Seq, rec2.Seq)

		if mapped && bedW != nil && !cfg.Diff {
			chrom1 := ix.Sequences[result.SeqIndex1].ID
			chrom2 := ix.Sequences[result.SeqIndex2].ID
			if err := bedW.WritePaired(chrom1, chrom2, result, name); err != nil {
				return err
			}
		}
		if writeFastq(mapped, cfg.Diff) && r1W != nil {
			if err := r1W.WriteRecord(rec1); err != nil {
				return err
			}
			if r2W != nil {
				if err := r2W.WriteRecord(rec2); err != nil {
					return err
				}
			}
		}
		return nil
	}

	probe := desc.EffectiveSingle(usingR1File)
	result, mapped := e.PlaceSingle(probe, rec1.Seq)

	if mapped && bedW != nil && !cfg.Diff {
		chrom := ix.Sequences[result.SeqIndex].ID
		if err := bedW.WriteSingle(chrom, result, name); err != nil {
			return err
		}
	}
	if writeFastq(mapped, cfg.Diff) && r1W != nil {
		if err := r1W.WriteRecord(rec1); err != nil {
			return err
		}
	}
	return nil
}

// writeFastq implements §4.4: mapped reads are written when --diff is
// off, non-mapped reads when --diff is on, never both.
func writeFastq(mapped, diff bool) bool {
	return (mapped && !diff) || (!mapped && diff)
}
