package testutil

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/stxkxs/runtrace/internal/config"
	"github.com/stxkxs/runtrace/internal/storage"
)

// FailingFS wraps a storage.FS and fails selected operations.
type FailingFS struct {
	Inner      storage.FS
	FailCreate bool
	FailOpen   bool
	FailWrite  bool
	FailFlush  bool
	FailClose  bool
	// WriteAfter lets this many writes succeed before FailWrite applies.
	WriteAfter int

	mu     sync.Mutex
	writes int
}

// NewFailingFS wraps a fresh in-memory backend.
func NewFailingFS() *FailingFS {
	return &FailingFS{Inner: storage.NewMemoryFS()}
}

func (f *FailingFS) Create(path string) (storage.File, error) {
	if f.FailCreate {
		return nil, fmt.Errorf("mock create failure: %s", path)
	}
	file, err := f.Inner.Create(path)
	if err != nil {
		return nil, err
	}
	return &failingFile{fs: f, inner: file}, nil
}

func (f *FailingFS) Open(path string) (io.ReadCloser, error) {
	if f.FailOpen {
		return nil, fmt.Errorf("mock open failure: %s", path)
	}
	return f.Inner.Open(path)
}

// WriteCount returns the number of Write calls that reached the wrapper.
func (f *FailingFS) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type failingFile struct {
	fs    *FailingFS
	inner storage.File
}

func (w *failingFile) Write(p []byte) (int, error) {
	w.fs.mu.Lock()
	w.fs.writes++
	n := w.fs.writes
	w.fs.mu.Unlock()

	if w.fs.FailWrite && n > w.fs.WriteAfter {
		return 0, fmt.Errorf("mock write failure")
	}
	return w.inner.Write(p)
}

func (w *failingFile) Flush() error {
	if w.fs.FailFlush {
		return fmt.Errorf("mock flush failure")
	}
	return w.inner.Flush()
}

func (w *failingFile) Close() error {
	if w.fs.FailClose {
		return fmt.Errorf("mock close failure")
	}
	return w.inner.Close()
}

// StepClock returns a clock starting at start that advances by step on
// every call.
func StepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

// TestConfig returns a minimal config for testing.
func TestConfig() *config.Config {
	cfg := &config.Config{
		LogDir: "runs",
		Storage: config.StorageConfig{
			Driver: storage.DriverMemory,
		},
		Logging: config.LoggingConfig{
			Level: "debug",
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}
