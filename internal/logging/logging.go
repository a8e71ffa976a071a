// Copyright 2026, Kerby Shedden and the Pemap contributors.

// Package logging sets up the per-component log files used across
// pemap, following the same one-logger-per-stage convention as each
// muscato binary's own setupLog().
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Logger is a *log.Logger writing to <dir>/<name>.log, as created by
// New. Callers are responsible for closing the underlying file handle
// via Close.
type Logger struct {
	*log.Logger
	file *os.File
}

// Close closes the underlying log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New opens (creating if absent) <dir>/<name>.log and returns a
// *Logger writing timestamped lines to it, mirroring the
// log.New(fid, "", log.Ltime) idiom used by every muscato binary.
func New(dir, name string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".log")
	fid, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("logging: creating %s: %w", path, err)
	}
	return &Logger{Logger: log.New(fid, "", log.Ltime), file: fid}, nil
}

// Fatal logs err, prints a single-line [Error] message to stderr, and
// exits the process with status 1. Once the coordinator's log is open,
// it is the one place pemap terminates the process; argument
// validation and run-directory/log setup failures exit from
// cmd/pemap directly. This matches the "propagation policy: failure
// surfaces immediately" error model.
func Fatal(l *Logger, err error) {
	if l != nil {
		l.Print(err)
	}
	fmt.Fprintf(os.Stderr, "[Error] %v\n", err)
	os.Exit(1)
}
