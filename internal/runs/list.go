package runs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stxkxs/runtrace/internal/storage"
)

// List returns the trace paths stored under dir, sorted. Backends that
// implement storage.Lister are asked directly; otherwise dir is read from
// the local filesystem. A missing directory yields an empty list.
func List(fs storage.FS, dir string) ([]string, error) {
	if dir == "" {
		dir = DefaultLogDir
	}

	if lister, ok := fs.(storage.Lister); ok {
		all, err := lister.Paths()
		if err != nil {
			return nil, storageError("list traces", err)
		}
		clean := filepath.Clean(dir)
		paths := []string{}
		for _, p := range all {
			if filepath.Dir(filepath.Clean(p)) == clean && isTraceFile(p) {
				paths = append(paths, p)
			}
		}
		sort.Strings(paths)
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, storageError("list traces", err)
	}

	paths := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !isTraceFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// TraceName strips the directory, timestamp and extension from a trace path.
func TraceName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), FileExt)
	// name_YYYY-MM-DD_HH-MM-SS.ffffff
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return base
	}
	return strings.Join(parts[:len(parts)-2], "_")
}

func isTraceFile(name string) bool {
	return strings.HasSuffix(name, FileExt)
}
