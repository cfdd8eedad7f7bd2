package runtrace

import (
	"errors"
	"testing"
)

func TestOpenLoad(t *testing.T) {
	dir := t.TempDir()

	trace, err := Open("api", Options{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	trace.Log("step", map[string]any{"acc": 0.5})
	trace.Log("step", map[string]any{"acc": 0.75})
	if err := trace.Close("", nil); err != nil {
		t.Fatal(err)
	}

	log, err := Load(trace.Path())
	if err != nil {
		t.Fatal(err)
	}
	values, _, err := log.MetricFloat("acc")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 2 || values[1] != 0.75 {
		t.Errorf("unexpected values %v", values)
	}

	if err := trace.Log("late", nil); !errors.Is(err, ErrTraceClosed) {
		t.Errorf("expected ErrTraceClosed, got %v", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	fs, err := NewStorage("memory", "")
	if err != nil {
		t.Fatal(err)
	}

	trace, err := Open("mem", Options{FS: fs})
	if err != nil {
		t.Fatal(err)
	}
	trace.Close("", nil)

	log, err := LoadFrom(trace.Path(), fs)
	if err != nil {
		t.Fatal(err)
	}
	if log.Len() != 2 || log.Entry(1).Kind != KindClose {
		t.Errorf("expected initial and close entries, got %d", log.Len())
	}
}

func TestUnmarshalError(t *testing.T) {
	if _, err := Unmarshal([]byte("{")); !errors.Is(err, ErrDecoding) {
		t.Errorf("expected ErrDecoding, got %v", err)
	}
}
