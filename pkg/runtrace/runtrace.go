// Package runtrace provides a public API for writing run traces and
// reading metrics back out of them.
//
// Example usage:
//
//	import "github.com/stxkxs/runtrace/pkg/runtrace"
//
//	trace, err := runtrace.Open("mnist", runtrace.Options{Data: map[string]any{"lr": 0.01}})
//	trace.Log("epoch", map[string]any{"loss": 0.42})
//	trace.Close("", nil)
//
//	log, err := runtrace.Load(trace.Path())
//	losses, times := log.Metric("loss")
package runtrace

import (
	rtErrors "github.com/stxkxs/runtrace/internal/errors"
	"github.com/stxkxs/runtrace/internal/record"
	"github.com/stxkxs/runtrace/internal/runs"
	"github.com/stxkxs/runtrace/internal/storage"
)

type (
	// Trace is an open, append-only run trace.
	Trace = runs.Trace
	// TraceLog is a loaded trace.
	TraceLog = runs.TraceLog
	// Options configures Open.
	Options = runs.Options
	// Entry is one record of a trace.
	Entry = record.Entry
	// Kind tags an entry.
	Kind = record.Kind
	// FS is a trace storage backend.
	FS = storage.FS
)

// Entry kinds.
const (
	KindUnknown = record.KindUnknown
	KindLog     = record.KindLog
	KindClose   = record.KindClose
)

// Error classes, matched with errors.Is.
var (
	ErrInvalidArgument = rtErrors.ErrInvalidArgument
	ErrTraceClosed     = rtErrors.ErrTraceClosed
	ErrDecoding        = rtErrors.ErrDecoding
	ErrEncoding        = rtErrors.ErrEncoding
	ErrStorage         = rtErrors.ErrStorage
	ErrHook            = rtErrors.ErrHook
)

// Open creates a new trace named name and writes its initial entry.
func Open(name string, opts Options) (*Trace, error) {
	return runs.Open(name, opts)
}

// Load reads a trace from the local filesystem.
func Load(path string) (*TraceLog, error) {
	return runs.Load(path, storage.LocalFS{})
}

// LoadFrom reads a trace from the given backend.
func LoadFrom(path string, fs FS) (*TraceLog, error) {
	return runs.Load(path, fs)
}

// NewStorage creates a backend by driver name: local, memory or sqlite.
func NewStorage(driver, path string) (FS, error) {
	return storage.New(driver, path)
}

// Marshal renders an entry as one wire line without the trailing newline.
func Marshal(e Entry) ([]byte, error) {
	return record.Marshal(e)
}

// Unmarshal parses one wire line.
func Unmarshal(b []byte) (Entry, error) {
	return record.Unmarshal(b)
}
