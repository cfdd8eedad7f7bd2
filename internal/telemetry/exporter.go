package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SeriesExporter defines the interface for exporting metric series.
type SeriesExporter interface {
	// Export writes one point of a series.
	Export(point SeriesPoint) error
	// Close releases resources.
	Close() error
}

// SeriesPoint is one timestamped value of a named metric.
type SeriesPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Metric    string            `json:"metric"`
	Value     any               `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// JSONLExporter writes points as JSON lines to a writer.
type JSONLExporter struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewJSONLExporter writes to w; Close does not close w.
func NewJSONLExporter(w io.Writer) *JSONLExporter {
	return &JSONLExporter{w: w}
}

// NewJSONFileExporter creates or appends to the given path.
func NewJSONFileExporter(path string) (*JSONLExporter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics file: %w", err)
	}

	return &JSONLExporter{w: f, closer: f}, nil
}

// Export writes a single point as a JSON line.
func (e *JSONLExporter) Export(point SeriesPoint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := json.Marshal(point)
	if err != nil {
		return err
	}

	_, err = e.w.Write(append(data, '\n'))
	return err
}

// Close closes the underlying file, if the exporter opened one.
func (e *JSONLExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// ExportSeries writes values and their timestamps as points of metric.
func ExportSeries(exp SeriesExporter, metric string, values []any, times []time.Time, labels map[string]string) error {
	if len(values) != len(times) {
		return fmt.Errorf("series %s: %d values but %d timestamps", metric, len(values), len(times))
	}
	for i, v := range values {
		point := SeriesPoint{
			Timestamp: times[i],
			Metric:    metric,
			Value:     v,
			Labels:    labels,
		}
		if err := exp.Export(point); err != nil {
			return fmt.Errorf("failed to export %s[%d]: %w", metric, i, err)
		}
	}
	return nil
}
