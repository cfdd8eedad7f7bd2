package runs

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	rtErrors "github.com/stxkxs/runtrace/internal/errors"
	"github.com/stxkxs/runtrace/internal/record"
	"github.com/stxkxs/runtrace/internal/storage"
)

// TraceLog is a fully loaded, read-only trace.
type TraceLog struct {
	path    string
	entries []record.Entry
}

// Load reads every entry of the trace at path. A single malformed line
// fails the whole load.
func Load(path string, fs storage.FS) (*TraceLog, error) {
	if fs == nil {
		fs = storage.LocalFS{}
	}

	r, err := fs.Open(path)
	if err != nil {
		return nil, storageError("load trace", err)
	}
	defer r.Close()

	entries, err := ReadEntries(r)
	if err != nil {
		return nil, fmt.Errorf("load trace %s: %w", path, err)
	}

	return &TraceLog{path: path, entries: entries}, nil
}

// ReadEntries decodes newline-delimited entries from r, skipping blank lines.
func ReadEntries(r io.Reader) ([]record.Entry, error) {
	entries := []record.Entry{}
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		line, readErr := br.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, rtErrors.Wrap(rtErrors.CodeStorage, fmt.Sprintf("read line %d", lineNo), readErr)
		}

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			entry, err := record.Unmarshal(trimmed)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			entries = append(entries, entry)
		}

		if readErr == io.EOF {
			return entries, nil
		}
	}
}

// Path returns the source path.
func (l *TraceLog) Path() string { return l.path }

// Len returns the number of entries.
func (l *TraceLog) Len() int { return len(l.entries) }

// Entries returns a copy of the entries in file order.
func (l *TraceLog) Entries() []record.Entry {
	out := make([]record.Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Entry returns the i-th entry.
func (l *TraceLog) Entry(i int) record.Entry { return l.entries[i] }

// Closed reports whether the trace ends with a close marker.
func (l *TraceLog) Closed() bool {
	n := len(l.entries)
	return n > 0 && l.entries[n-1].Kind == record.KindClose
}

// Metric returns, in file order, the value stored under name and the time
// of every entry whose data has that key. Both slices have equal length.
func (l *TraceLog) Metric(name string) ([]any, []time.Time) {
	values := []any{}
	times := []time.Time{}
	for _, e := range l.entries {
		if v, ok := e.Data[name]; ok {
			values = append(values, v)
			times = append(times, e.Time)
		}
	}
	return values, times
}

// MetricFloat is Metric with every value converted to float64.
func (l *TraceLog) MetricFloat(name string) ([]float64, []time.Time, error) {
	values, times := l.Metric(name)
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, nil, rtErrors.Newf(rtErrors.CodeDecoding, "metric %s: value %d (%v) is not numeric", name, i, v)
		}
		out[i] = f
	}
	return out, times, nil
}

// Keys returns every data key used by any entry, sorted.
func (l *TraceLog) Keys() []string {
	seen := make(map[string]bool)
	for _, e := range l.entries {
		for k := range e.Data {
			seen[k] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
