package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
)

var errFileClosed = errors.New("file already closed")

// MemoryFS keeps traces in memory. Create on an existing path replaces it.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*MemoryFile
}

// NewMemoryFS creates an empty in-memory backend.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: make(map[string]*MemoryFile),
	}
}

// Create starts a new empty file at path.
func (m *MemoryFS) Create(path string) (File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := &MemoryFile{path: path, flushed: true}
	m.files[path] = f
	return f, nil
}

// Open returns a reader over a snapshot of the file contents.
func (m *MemoryFS) Open(path string) (io.ReadCloser, error) {
	m.mu.RLock()
	f, ok := m.files[path]
	m.mu.RUnlock()

	if !ok {
		return nil, storageErr("open", path, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(f.Bytes())), nil
}

// File returns the file stored at path.
func (m *MemoryFS) File(path string) (*MemoryFile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	return f, ok
}

// Paths lists stored paths in lexical order.
func (m *MemoryFS) Paths() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// MemoryFile is a File backed by a byte buffer. It records whether it has
// been flushed since the last write and whether it has been closed.
type MemoryFile struct {
	mu      sync.Mutex
	path    string
	buf     bytes.Buffer
	flushed bool
	closed  bool
}

func (f *MemoryFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, storageErr("write", f.path, errFileClosed)
	}
	f.flushed = false
	return f.buf.Write(p)
}

func (f *MemoryFile) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storageErr("flush", f.path, errFileClosed)
	}
	f.flushed = true
	return nil
}

func (f *MemoryFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storageErr("close", f.path, errFileClosed)
	}
	f.closed = true
	return nil
}

// Bytes returns a copy of everything written so far.
func (f *MemoryFile) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return bytes.Clone(f.buf.Bytes())
}

// Flushed reports whether no writes happened since the last Flush.
func (f *MemoryFile) Flushed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushed
}

// Closed reports whether Close has been called.
func (f *MemoryFile) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
