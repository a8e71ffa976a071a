// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package bedio writes interval records produced by a Placement
// Policy: BED for single-end placements, BEDPE for paired ones.
package bedio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/kshedden/pemap/internal/placement"
)

// Writer appends BED or BEDPE lines to a shard file.
type Writer struct {
	w *bufio.Writer
	f *os.File
}

// NewWriter creates path for interval output.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("bedio: creating %s: %w", path, err)
	}
	return &Writer{w: bufio.NewWriterSize(f, 64*1024), f: f}, nil
}

// WriteSingle appends one BED record: chrom, start, end, name. The
// placement's strand is not a BED column (standard four-field BED has
// none); callers that need it can still read it off the
// placement.SingleResult directly.
func (w *Writer) WriteSingle(chrom string, r placement.SingleResult, name []byte) error {
	_, err := fmt.Fprintf(w.w, "%s\t%d\t%d\t%s\n", chrom, r.Start, r.End, name)
	return err
}

// WritePaired appends one BEDPE record: chrom1/start1/end1,
// chrom2/start2/end2, name, score, strand1, strand2.
func (w *Writer) WritePaired(chrom1, chrom2 string, r placement.PairedResult, name []byte) error {
	_, err := fmt.Fprintf(w.w, "%s\t%d\t%d\t%s\t%d\t%d\t%s\t%d\t%c\t%c\n",
		chrom1, r.Start1, r.End1, chrom2, r.Start2, r.End2, name, r.Score, r.Strand1, r.Strand2)
	return err
}

// Close flushes and closes the shard file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.f.Close()
}

var _ io.Closer = (*Writer)(nil)
