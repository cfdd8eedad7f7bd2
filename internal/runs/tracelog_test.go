package runs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rtErrors "github.com/stxkxs/runtrace/internal/errors"
	"github.com/stxkxs/runtrace/internal/record"
	"github.com/stxkxs/runtrace/internal/storage"
)

const goodLine = `{"Type": "log", "Time": "2024-03-01T12:00:00+00:00", "UUID": "8f0e3c2a-5b1d-4c7e-9a2f-1d3b5c7e9f01", "Summary": "step", "DataJSON": "{\"x\": 1}"}`

func TestReadEntries(t *testing.T) {
	input := goodLine + "\n\n   \n" + goodLine
	entries, err := ReadEntries(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected blank lines skipped, got %d entries", len(entries))
	}
	if entries[0].Data["x"] != json.Number("1") {
		t.Errorf("unexpected data %v", entries[0].Data)
	}
}

func TestReadEntries_Empty(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", entries)
	}
}

func TestReadEntries_LongLine(t *testing.T) {
	h := record.New()
	h.Summary = strings.Repeat("s", 1<<20)
	line, err := record.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := ReadEntries(strings.NewReader(string(line)))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || len(entries[0].Summary) != 1<<20 {
		t.Error("expected long line decoded intact")
	}
}

func TestReadEntries_BadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", goodLine + "\nnot json\n"},
		{"bad type", goodLine + "\n" + `{"Type": "Bogus"}` + "\n"},
		{"bad data", goodLine + "\n" + `{"DataJSON": "[1,2]"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEntries(strings.NewReader(tt.input))
			if !errors.Is(err, rtErrors.ErrDecoding) {
				t.Fatalf("expected DECODING_FAILED, got %v", err)
			}
			if !strings.Contains(err.Error(), "line 2") {
				t.Errorf("expected line number in %q", err.Error())
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil)
	if !errors.Is(err, rtErrors.ErrStorage) {
		t.Fatalf("expected STORAGE_FAILED, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist cause, got %v", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	fs := storage.NewMemoryFS()
	f, _ := fs.Create("runs/bad.json")
	f.Write([]byte(goodLine + "\n{\n"))
	f.Close()

	_, err := Load("runs/bad.json", fs)
	if !errors.Is(err, rtErrors.ErrDecoding) {
		t.Fatalf("expected DECODING_FAILED, got %v", err)
	}
	if !strings.Contains(err.Error(), "runs/bad.json") {
		t.Errorf("expected path in error, got %v", err)
	}
}

func TestTraceLog_ClosedAndEntries(t *testing.T) {
	fs := storage.NewMemoryFS()
	f, _ := fs.Create("t.json")
	f.Write([]byte(goodLine + "\n"))
	f.Close()

	log, err := Load("t.json", fs)
	if err != nil {
		t.Fatal(err)
	}
	if log.Path() != "t.json" {
		t.Errorf("unexpected path %s", log.Path())
	}
	if log.Closed() {
		t.Error("trace without close entry reported closed")
	}

	entries := log.Entries()
	entries[0].Summary = "changed"
	if log.Entry(0).Summary != "step" {
		t.Error("Entries must return a copy")
	}
}

func TestList_Lister(t *testing.T) {
	fs := storage.NewMemoryFS()
	for _, p := range []string{"runs/b_2024-01-01_00-00-00.000000.json", "runs/a_2024-01-01_00-00-00.000000.json", "other/c.json", "runs/notes.txt"} {
		f, _ := fs.Create(p)
		f.Close()
	}

	paths, err := List(fs, "runs")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || !strings.HasPrefix(paths[0], "runs/a_") || !strings.HasPrefix(paths[1], "runs/b_") {
		t.Errorf("unexpected paths %v", paths)
	}
}

func TestList_MissingDir(t *testing.T) {
	paths, err := List(storage.LocalFS{}, filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths, got %v", paths)
	}
}

func TestTraceName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"runs/test_2024-03-01_12-00-00.000000.json", "test"},
		{"runs/my_run_2024-03-01_12-00-00.000000.json", "my_run"},
		{"plain.json", "plain"},
	}
	for _, tt := range tests {
		if got := TraceName(tt.path); got != tt.want {
			t.Errorf("TraceName(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
