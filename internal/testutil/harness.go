package testutil

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stxkxs/runtrace/internal/config"
	"github.com/stxkxs/runtrace/internal/storage"
	"github.com/stxkxs/runtrace/internal/telemetry"
)

// TestHarness provides what trace tests need: config, an in-memory
// backend, a deterministic clock and a logger whose output is captured.
type TestHarness struct {
	T      *testing.T
	Config *config.Config
	FS     *storage.MemoryFS
	Logger *telemetry.Logger
	Clock  func() time.Time
	Start  time.Time

	logs *bytes.Buffer
}

// NewTestHarness creates a harness whose clock ticks one millisecond per call.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	var buf bytes.Buffer
	logger, err := telemetry.NewLoggerWithLevel("debug", "text", &buf)
	if err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &TestHarness{
		T:      t,
		Config: TestConfig(),
		FS:     storage.NewMemoryFS(),
		Logger: logger,
		Clock:  StepClock(start, time.Millisecond),
		Start:  start,
		logs:   &buf,
	}
}

// Logs returns everything logged so far.
func (h *TestHarness) Logs() string {
	return h.logs.String()
}

// AssertLogged checks that a log record contains substr.
func (h *TestHarness) AssertLogged(substr string) {
	h.T.Helper()
	if !strings.Contains(h.logs.String(), substr) {
		h.T.Errorf("expected log output to contain %q, got:\n%s", substr, h.logs.String())
	}
}

// OnlyFile returns the single file in the harness backend.
func (h *TestHarness) OnlyFile() (string, *storage.MemoryFile) {
	h.T.Helper()
	paths, _ := h.FS.Paths()
	if len(paths) != 1 {
		h.T.Fatalf("expected exactly one file, got %v", paths)
	}
	f, _ := h.FS.File(paths[0])
	return paths[0], f
}
