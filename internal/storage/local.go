package storage

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// LocalFS stores traces on the local filesystem.
type LocalFS struct{}

// Create creates path and its parent directories, truncating any existing file.
func (LocalFS) Create(path string) (File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, storageErr("create directory for", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, storageErr("create", path, err)
	}
	return &localFile{f: f, w: bufio.NewWriter(f)}, nil
}

// Open opens path for reading.
func (LocalFS) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, storageErr("open", path, err)
	}
	return f, nil
}

type localFile struct {
	f *os.File
	w *bufio.Writer
}

func (l *localFile) Write(p []byte) (int, error) {
	n, err := l.w.Write(p)
	if err != nil {
		return n, storageErr("write", l.f.Name(), err)
	}
	return n, nil
}

// Flush pushes buffered bytes to the file and syncs it to disk.
func (l *localFile) Flush() error {
	if err := l.w.Flush(); err != nil {
		return storageErr("flush", l.f.Name(), err)
	}
	if err := l.f.Sync(); err != nil {
		return storageErr("sync", l.f.Name(), err)
	}
	return nil
}

func (l *localFile) Close() error {
	flushErr := l.w.Flush()
	if err := l.f.Close(); err != nil {
		return storageErr("close", l.f.Name(), err)
	}
	if flushErr != nil {
		return storageErr("flush", l.f.Name(), flushErr)
	}
	return nil
}
