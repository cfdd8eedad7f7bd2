package runs

import (
	"path/filepath"
	"time"
)

// DefaultLogDir is used when Options.Dir is empty.
const DefaultLogDir = "./runs/"

// FileExt is appended to every trace file name.
const FileExt = ".json"

// timestampLayout has no whitespace or colons so the result is usable in a
// file name on any platform.
const timestampLayout = "2006-01-02_15-04-05.000000"

// NowStr renders t in local time in a form that is safe inside a path.
func NowStr(t time.Time) string {
	return t.Local().Format(timestampLayout)
}

// TracePath joins dir with "{name}_{timestamp}.json".
func TracePath(dir, name, timestamp string) string {
	if dir == "" {
		dir = DefaultLogDir
	}
	return filepath.Join(dir, name+"_"+timestamp+FileExt)
}
