// Package runs writes run traces and loads them back for metric extraction.
package runs

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	rtErrors "github.com/stxkxs/runtrace/internal/errors"
	"github.com/stxkxs/runtrace/internal/event"
	"github.com/stxkxs/runtrace/internal/record"
	"github.com/stxkxs/runtrace/internal/storage"
	"github.com/stxkxs/runtrace/internal/telemetry"
)

// Options configures Open. The zero value writes to DefaultLogDir on the
// local filesystem.
type Options struct {
	Dir    string            // directory for the trace file (default DefaultLogDir)
	Data   map[string]any    // payload of the initial entry
	FS     storage.FS        // destination backend (default storage.LocalFS)
	Logger *telemetry.Logger // debug output (default discards)
	Clock  func() time.Time  // entry timestamps (default time.Now)
	Events *event.Bus        // lifecycle notifications (optional)
}

// Trace is a single-writer, append-only log of one run. It is not safe for
// concurrent use.
type Trace struct {
	name   string
	path   string
	file   storage.File
	closed bool
	now    func() time.Time
	logger *telemetry.Logger
	events *event.Bus
	stats  telemetry.WriteStats
}

// Open creates the trace file and writes the initial entry.
func Open(name string, opts Options) (*Trace, error) {
	if name == "" {
		return nil, rtErrors.New(rtErrors.CodeInvalidArgument, "trace name is required").
			WithSuggestion("pass a non-empty name identifying the run")
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	fs := opts.FS
	if fs == nil {
		fs = storage.LocalFS{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.Nop()
	}

	stamp := NowStr(now())
	path := TracePath(opts.Dir, name, stamp)
	logger = logger.With("trace", name)
	logger.Debug("opening trace", "path", path)

	file, err := fs.Create(path)
	if err != nil {
		return nil, storageError("open trace", err)
	}

	t := &Trace{
		name:   name,
		path:   path,
		file:   file,
		now:    now,
		logger: logger,
		events: opts.Events,
	}

	if err := t.Log(name+" "+stamp, opts.Data); err != nil {
		t.abortOpen()
		return nil, err
	}

	if err := t.emit(event.TraceOpened); err != nil {
		t.abortOpen()
		return nil, err
	}

	return t, nil
}

// abortOpen releases the file after a failed Open. The original error is
// what the caller sees, so a close failure is only logged. The partial file
// stays on the backend.
func (t *Trace) abortOpen() {
	if err := t.file.Close(); err != nil {
		t.logger.Warn("failed to release trace after open error", "path", t.path, "error", err)
	}
}

// Name returns the caller-supplied trace name.
func (t *Trace) Name() string { return t.name }

// Path returns the generated destination path.
func (t *Trace) Path() string { return t.path }

// Closed reports whether Close has been called.
func (t *Trace) Closed() bool { return t.closed }

// Stats returns counts of entries, bytes and flushes written so far.
func (t *Trace) Stats() telemetry.WriteStats { return t.stats }

// Log appends an ordinary entry. It does not flush.
func (t *Trace) Log(summary string, data map[string]any) error {
	return t.LogKind(record.KindLog, summary, data)
}

// LogKind appends an entry of the given kind as one newline-terminated write.
func (t *Trace) LogKind(kind record.Kind, summary string, data map[string]any) error {
	if t.closed {
		return t.closedError("Log")
	}
	if data == nil {
		data = map[string]any{}
	}

	entry := record.Entry{
		Kind:    kind,
		Time:    t.now(),
		UUID:    uuid.New(),
		Summary: summary,
		Data:    data,
	}

	line, err := record.Marshal(entry)
	if err != nil {
		return fmt.Errorf("log %q: %w", summary, err)
	}
	line = append(line, '\n')

	n, err := t.file.Write(line)
	if err != nil {
		return storageError("write entry", err)
	}
	t.stats.RecordWrite(n)

	return nil
}

// Flush logs an extra entry when summary or data is non-empty, then
// flushes the destination.
func (t *Trace) Flush(summary string, data map[string]any) error {
	if t.closed {
		return t.closedError("Flush")
	}

	if summary != "" || len(data) > 0 {
		if err := t.Log(summary, data); err != nil {
			return err
		}
	}

	if err := t.file.Flush(); err != nil {
		return storageError("flush trace", err)
	}
	t.stats.RecordFlush()

	return t.emit(event.TraceFlushed)
}

// Close appends the terminal close entry, flushes and releases the
// destination. The trace is closed afterwards even if a step failed; the
// first failure is returned.
func (t *Trace) Close(summary string, data map[string]any) error {
	if t.closed {
		return t.closedError("Close")
	}

	var firstErr error
	if err := t.LogKind(record.KindClose, summary, data); err != nil {
		firstErr = err
	}

	if err := t.file.Flush(); err != nil {
		if firstErr == nil {
			firstErr = storageError("flush trace", err)
		}
	} else {
		t.stats.RecordFlush()
	}

	if err := t.file.Close(); err != nil && firstErr == nil {
		firstErr = storageError("close trace", err)
	}
	t.closed = true

	t.logger.Debug("trace closed", append([]any{"path", t.path}, t.stats.Fields()...)...)
	if err := t.emit(event.TraceClosed); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// emit notifies hooks. Only blocking hooks can fail the call.
func (t *Trace) emit(typ event.EventType) error {
	if t.events == nil {
		return nil
	}
	data := map[string]any{
		"trace":   t.name,
		"path":    t.path,
		"entries": t.stats.Entries,
	}
	if err := t.events.Emit(event.NewEvent(typ, data)); err != nil {
		return rtErrors.Wrap(rtErrors.CodeHook, string(typ)+" hook", err)
	}
	return nil
}

func (t *Trace) closedError(op string) error {
	return rtErrors.Newf(rtErrors.CodeTraceClosed, "%s called on closed trace %s", op, t.name)
}

// storageError classifies failures from an FS implementation. Errors that
// already carry a code keep it.
func storageError(msg string, err error) error {
	if rtErrors.AsCode(err) != "" {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return rtErrors.Wrap(rtErrors.CodeStorage, msg, err)
}
