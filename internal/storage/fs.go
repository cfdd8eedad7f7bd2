// Package storage abstracts where trace files live. A writer needs Create
// and the File it returns; a reader needs Open.
package storage

import (
	"io"

	rtErrors "github.com/stxkxs/runtrace/internal/errors"
)

// File is the write side of a trace destination.
type File interface {
	Write(p []byte) (int, error)
	Flush() error
	Close() error
}

// FS opens trace destinations.
type FS interface {
	// Create opens path for writing, creating or truncating it.
	Create(path string) (File, error)
	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)
}

// Lister is implemented by backends that can enumerate stored traces.
type Lister interface {
	Paths() ([]string, error)
}

// Storage drivers accepted by New.
const (
	DriverLocal  = "local"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// New creates a backend for the given driver. path is only used by sqlite.
func New(driver, path string) (FS, error) {
	switch driver {
	case DriverLocal, "":
		return LocalFS{}, nil
	case DriverMemory:
		return NewMemoryFS(), nil
	case DriverSQLite:
		return NewSQLiteFS(path)
	default:
		return nil, rtErrors.Newf(rtErrors.CodeInvalidArgument, "unsupported storage driver: %s", driver).
			WithSuggestion("use one of: local, memory, sqlite")
	}
}

// Close releases backends that hold resources, such as a database handle.
func Close(fs FS) error {
	if c, ok := fs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func storageErr(op, path string, err error) error {
	return rtErrors.Wrap(rtErrors.CodeStorage, op+" "+path, err)
}
