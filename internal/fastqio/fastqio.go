// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package fastqio reads and writes four-line FASTQ records. Reads
// (unlike the gzip-tolerant reference FASTA loader in internal/refindex)
// are plain text only: the partitioner seeks workers to exact byte
// offsets, which only makes sense against an uncompressed stream.
//
// Grounded on the teacher's utils.ReadInSeq, generalized from a
// two-line name/seq reader to a full four-line record reader that
// also keeps the quality and plus lines, and reworked to read from an
// arbitrary seek position instead of always starting at byte 0.
package fastqio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
)

// Record is a single FASTQ record. Its fields point into the Reader's
// internal scratch buffer and are only valid until the next call to
// Next; callers that need to retain a record past that point must
// copy it.
type Record struct {
	Header []byte
	Seq    []byte
	Plus   []byte
	Qual   []byte
}

// TrimName strips the leading '@' record marker and truncates a FASTQ
// header at its first space, tab, or newline, matching the interval
// record name field's convention.
func TrimName(header []byte) []byte {
	if len(header) > 0 && header[0] == '@' {
		header = header[1:]
	}
	if i := bytes.IndexAny(header, " \t\r\n"); i >= 0 {
		return header[:i]
	}
	return header
}

// Reader reads consecutive four-line records starting wherever the
// underlying file is currently positioned.
type Reader struct {
	r   *bufio.Reader
	rec Record
}

// NewReader wraps f, first seeking to startByte (a no-op at 0). For
// paired input, R1 and R2 are each opened at their own worker-assigned
// start byte.
func NewReader(f *os.File, startByte int64) (*Reader, error) {
	if startByte > 0 {
		if _, err := f.Seek(startByte, io.SeekStart); err != nil {
			return nil, fmt.Errorf("fastqio: seeking to %d: %w", startByte, err)
		}
	}
	return &Reader{r: bufio.NewReaderSize(f, 64*1024)}, nil
}

// Next reads one record into the Reader's scratch buffer. It returns
// io.EOF once no further record is available; any other error
// indicates truncated or malformed input and is fatal to the caller.
func (r *Reader) Next() (*Record, error) {
	header, err := r.readLine()
	if err != nil {
		return nil, err
	}
	seq, err := r.readLine()
	if err != nil {
		return nil, fmt.Errorf("fastqio: record %q: reading sequence line: %w", header, err)
	}
	plus, err := r.readLine()
	if err != nil {
		return nil, fmt.Errorf("fastqio: record %q: reading plus line: %w", header, err)
	}
	qual, err := r.readLine()
	if err != nil {
		return nil, fmt.Errorf("fastqio: record %q: reading quality line: %w", header, err)
	}
	if len(qual) != len(seq) {
		return nil, fmt.Errorf("fastqio: record %q: quality length %d != sequence length %d", header, len(qual), len(seq))
	}
	r.rec = Record{Header: header, Seq: seq, Plus: plus, Qual: qual}
	return &r.rec, nil
}

func (r *Reader) readLine() ([]byte, error) {
	line, err := r.r.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return nil, err
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	return trimNewline(line), nil
}

func trimNewline(b []byte) []byte {
	n := len(b)
	if n > 0 && b[n-1] == '\n' {
		n--
	}
	if n > 0 && b[n-1] == '\r' {
		n--
	}
	return b[:n]
}

// Writer appends FASTQ records to a shard file, optionally through a
// snappy compressor (--compress-shards); final merged output is
// always plain text regardless of shard compression.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
}

// NewWriter creates path and returns a Writer for it. When compress is
// set, records are snappy-framed as they are written.
func NewWriter(path string, compress bool) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("fastqio: creating %s: %w", path, err)
	}
	if !compress {
		return &Writer{w: bufio.NewWriterSize(f, 64*1024), closer: f}, nil
	}
	sw := snappy.NewBufferedWriter(f)
	return &Writer{w: bufio.NewWriterSize(sw, 64*1024), closer: multiCloser{sw, f}}, nil
}

// WriteRecord appends rec as four newline-terminated lines.
func (w *Writer) WriteRecord(rec *Record) error {
	for _, line := range [][]byte{rec.Header, rec.Seq, rec.Plus, rec.Qual} {
		if _, err := w.w.Write(line); err != nil {
			return err
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered output and closes the underlying file (and
// snappy framer, if any).
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.closer.Close()
}

type multiCloser struct {
	inner io.Closer
	file  io.Closer
}

func (m multiCloser) Close() error {
	if err := m.inner.Close(); err != nil {
		return err
	}
	return m.file.Close()
}
