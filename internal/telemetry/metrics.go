package telemetry

// WriteStats counts what a trace writer has pushed to storage.
type WriteStats struct {
	Entries int64 `json:"entries"`
	Bytes   int64 `json:"bytes"`
	Flushes int64 `json:"flushes"`
}

// RecordWrite counts one entry of n bytes.
func (s *WriteStats) RecordWrite(n int) {
	s.Entries++
	s.Bytes += int64(n)
}

// RecordFlush counts one flush of the storage handle.
func (s *WriteStats) RecordFlush() {
	s.Flushes++
}

// Fields returns key-value pairs suitable for structured logging.
func (s WriteStats) Fields() []any {
	return []any{
		"entries", s.Entries,
		"bytes", s.Bytes,
		"flushes", s.Flushes,
	}
}
