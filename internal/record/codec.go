package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	rtErrors "github.com/stxkxs/runtrace/internal/errors"
)

// Wire keys.
const (
	KeyType     = "Type"
	KeyTime     = "Time"
	KeyUUID     = "UUID"
	KeySummary  = "Summary"
	KeyDataJSON = "DataJSON"
)

// TimeLayout is ISO-8601 with a numeric offset; UTC renders as +00:00.
const TimeLayout = "2006-01-02T15:04:05.999999999-07:00"

// timeLayoutSeconds is used for zones whose offset is not a whole minute,
// such as historical local mean times.
const timeLayoutSeconds = "2006-01-02T15:04:05.999999999-07:00:00"

// Offset-less layouts written by older writers; read in time.Local.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Wire is the five-key JSON object written for each entry. DataJSON holds
// the JSON text of the entry data as a string.
type Wire struct {
	Type     string `json:"Type"`
	Time     string `json:"Time"`
	UUID     string `json:"UUID"`
	Summary  string `json:"Summary"`
	DataJSON string `json:"DataJSON"`
}

// Encode converts an entry to its wire form.
func Encode(e Entry) (Wire, error) {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := marshalCompact(data)
	if err != nil {
		return Wire{}, rtErrors.Wrap(rtErrors.CodeEncoding, "data is not JSON serializable", err)
	}

	return Wire{
		Type:     e.Kind.String(),
		Time:     FormatTime(e.Time),
		UUID:     e.UUID.String(),
		Summary:  e.Summary,
		DataJSON: string(dataJSON),
	}, nil
}

// Marshal encodes an entry as a single-line JSON object.
func Marshal(e Entry) ([]byte, error) {
	w, err := Encode(e)
	if err != nil {
		return nil, err
	}
	b, err := marshalCompact(w)
	if err != nil {
		return nil, rtErrors.Wrap(rtErrors.CodeEncoding, "failed to marshal entry", err)
	}
	return b, nil
}

// Decode builds an entry from a decoded JSON object. Absent keys keep
// their defaults; present keys must have the right shape.
func Decode(obj map[string]json.RawMessage) (Entry, error) {
	e := New()

	if s, ok, err := stringField(obj, KeyType); err != nil {
		return Entry{}, err
	} else if ok {
		kind, err := ParseKind(s)
		if err != nil {
			return Entry{}, rtErrors.Wrap(rtErrors.CodeDecoding, "invalid Type", err)
		}
		e.Kind = kind
	}

	if s, ok, err := stringField(obj, KeyTime); err != nil {
		return Entry{}, err
	} else if ok {
		t, err := ParseTime(s)
		if err != nil {
			return Entry{}, rtErrors.Wrap(rtErrors.CodeDecoding, "invalid Time", err)
		}
		e.Time = t
	}

	if s, ok, err := stringField(obj, KeyUUID); err != nil {
		return Entry{}, err
	} else if ok {
		id, err := uuid.Parse(s)
		if err != nil {
			return Entry{}, rtErrors.Wrap(rtErrors.CodeDecoding, "invalid UUID", err)
		}
		e.UUID = id
	}

	if s, ok, err := stringField(obj, KeySummary); err != nil {
		return Entry{}, err
	} else if ok {
		e.Summary = s
	}

	if s, ok, err := stringField(obj, KeyDataJSON); err != nil {
		return Entry{}, err
	} else if ok {
		data, err := decodeData(s)
		if err != nil {
			return Entry{}, err
		}
		e.Data = data
	}

	return e, nil
}

// Unmarshal decodes one JSON object text into an entry.
func Unmarshal(b []byte) (Entry, error) {
	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("null")) {
		return Entry{}, rtErrors.New(rtErrors.CodeDecoding, "entry is null, expected a JSON object")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return Entry{}, rtErrors.Wrap(rtErrors.CodeDecoding, "entry is not a JSON object", err)
	}
	return Decode(obj)
}

// MarshalJSON implements json.Marshaler using the wire form.
func (e Entry) MarshalJSON() ([]byte, error) {
	return Marshal(e)
}

// UnmarshalJSON implements json.Unmarshaler using the wire form.
func (e *Entry) UnmarshalJSON(b []byte) error {
	decoded, err := Unmarshal(b)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// FormatTime renders t in TimeLayout, adding offset seconds when the
// zone offset is not a whole minute.
func FormatTime(t time.Time) string {
	if _, offset := t.Zone(); offset%60 != 0 {
		return t.Format(timeLayoutSeconds)
	}
	return t.Format(TimeLayout)
}

// ParseTime accepts RFC 3339 timestamps (offset or Z), offsets carrying
// seconds, and offset-less ISO timestamps. A zero offset is normalized to UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if st, serr := time.Parse(timeLayoutSeconds, s); serr == nil {
			t, err = st, nil
		}
	}
	if err == nil {
		if _, offset := t.Zone(); offset == 0 {
			t = t.UTC()
		}
		return t, nil
	}

	for _, layout := range localLayouts {
		if lt, lerr := time.ParseInLocation(layout, s, time.Local); lerr == nil {
			return lt, nil
		}
	}
	return time.Time{}, err
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool, error) {
	raw, ok := obj[key]
	if !ok {
		return "", false, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false, rtErrors.Newf(rtErrors.CodeDecoding, "%s must be a string, got %s", key, abbreviate(string(trimmed)))
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false, rtErrors.Wrap(rtErrors.CodeDecoding, fmt.Sprintf("invalid %s", key), err)
	}
	return s, true, nil
}

func decodeData(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, rtErrors.Wrap(rtErrors.CodeDecoding, "DataJSON is not valid JSON", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, rtErrors.New(rtErrors.CodeDecoding, "DataJSON has trailing data after the object")
	}
	switch data := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return data, nil
	default:
		return nil, rtErrors.Newf(rtErrors.CodeDecoding, "DataJSON must hold a JSON object, got %T", v)
	}
}

// marshalCompact marshals without HTML escaping and without the trailing
// newline json.Encoder adds.
func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func abbreviate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}
