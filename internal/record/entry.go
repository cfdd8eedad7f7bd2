// Package record defines the log entry appended to a run trace and its
// JSON wire encoding.
package record

import (
	"bytes"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// ZeroTime is the default timestamp of an entry.
var ZeroTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// ZeroUUID is the default identifier of an entry.
var ZeroUUID = uuid.Nil

// Kind tags an entry as an ordinary log line or the terminal close marker.
type Kind int

const (
	KindUnknown Kind = iota
	KindLog
	KindClose
)

// String returns the wire text of the kind.
func (k Kind) String() string {
	switch k {
	case KindLog:
		return "log"
	case KindClose:
		return "close"
	default:
		return ""
	}
}

// ParseKind maps wire text back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "":
		return KindUnknown, nil
	case "log":
		return KindLog, nil
	case "close":
		return KindClose, nil
	}
	return KindUnknown, fmt.Errorf("unknown entry type %q", s)
}

// Entry is one record of a trace.
type Entry struct {
	Kind    Kind
	Time    time.Time
	UUID    uuid.UUID
	Summary string
	Data    map[string]any
}

// New returns an entry with every field at its default.
func New() Entry {
	return Entry{
		Kind: KindUnknown,
		Time: ZeroTime,
		UUID: ZeroUUID,
		Data: map[string]any{},
	}
}

// Equal reports whether two entries hold the same kind, instant, id,
// summary and data. A nil Data equals an empty one. Data is compared by
// its JSON encoding, so int(1), float64(1) and json.Number("1") match.
func (e Entry) Equal(other Entry) bool {
	if e.Kind != other.Kind || e.UUID != other.UUID || e.Summary != other.Summary {
		return false
	}
	if !e.Time.Equal(other.Time) {
		return false
	}
	if len(e.Data) == 0 && len(other.Data) == 0 {
		return true
	}
	a, errA := marshalCompact(e.Data)
	b, errB := marshalCompact(other.Data)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(e.Data, other.Data)
	}
	return bytes.Equal(a, b)
}

// Has reports whether the entry's data carries key.
func (e Entry) Has(key string) bool {
	_, ok := e.Data[key]
	return ok
}
