package record

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	rtErrors "github.com/stxkxs/runtrace/internal/errors"
)

func sampleEntry() Entry {
	return Entry{
		Kind:    KindLog,
		Time:    time.Date(2023, 1, 1, 3, 3, 0, 0, time.UTC),
		UUID:    uuid.MustParse("47d84f08-eac2-42b1-9569-740c88f4069a"),
		Summary: "This is a summary! \n with new lines",
		Data: map[string]any{
			"here is": "some data",
			"and that": map[string]any{
				"is neat": float64(123),
			},
		},
	}
}

func TestKind_String(t *testing.T) {
	if KindUnknown.String() != "" || KindLog.String() != "log" || KindClose.String() != "close" {
		t.Fatalf("unexpected kind text: %q %q %q", KindUnknown, KindLog, KindClose)
	}
	if KindUnknown == KindLog || KindLog == KindClose || KindClose == KindUnknown {
		t.Fatal("kinds must be distinct")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindUnknown, KindLog, KindClose} {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("expected %v, got %v", k, got)
		}
	}

	if _, err := ParseKind("LOG"); err == nil {
		t.Fatal("expected error for unknown kind text")
	}
}

func TestEncode_Defaults(t *testing.T) {
	w, err := Encode(New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Wire{
		Type:     "",
		Time:     "0001-01-01T00:00:00+00:00",
		UUID:     "00000000-0000-0000-0000-000000000000",
		Summary:  "",
		DataJSON: "{}",
	}
	if w != expected {
		t.Errorf("expected %+v, got %+v", expected, w)
	}
}

func TestEncode_Sample(t *testing.T) {
	w, err := Encode(sampleEntry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Type != "log" {
		t.Errorf("expected Type log, got %q", w.Type)
	}
	if w.Time != "2023-01-01T03:03:00+00:00" {
		t.Errorf("unexpected Time %q", w.Time)
	}
	if w.UUID != "47d84f08-eac2-42b1-9569-740c88f4069a" {
		t.Errorf("unexpected UUID %q", w.UUID)
	}
	if w.Summary != "This is a summary! \n with new lines" {
		t.Errorf("unexpected Summary %q", w.Summary)
	}

	// DataJSON is a string holding JSON, not a nested object.
	var data map[string]any
	if err := json.Unmarshal([]byte(w.DataJSON), &data); err != nil {
		t.Fatalf("DataJSON is not JSON text: %v", err)
	}
	if data["here is"] != "some data" {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestEncode_NilDataIsEmptyObject(t *testing.T) {
	e := New()
	e.Data = nil
	w, err := Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.DataJSON != "{}" {
		t.Errorf("expected {}, got %q", w.DataJSON)
	}
}

func TestEncode_UnserializableData(t *testing.T) {
	tests := map[string]any{
		"channel": make(chan int),
		"func":    func() {},
		"nan":     math.NaN(),
	}

	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			e := New()
			e.Data = map[string]any{"bad": v}
			_, err := Encode(e)
			if err == nil {
				t.Fatal("expected encoding error")
			}
			if !errors.Is(err, rtErrors.ErrEncoding) {
				t.Errorf("expected ENCODING_FAILED, got %v", err)
			}
		})
	}
}

func TestMarshal_SingleLine(t *testing.T) {
	b, err := Marshal(sampleEntry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(b), "\n") {
		t.Errorf("encoded entry spans lines: %s", b)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{KeyType, KeyTime, KeyUUID, KeySummary, KeyDataJSON} {
		if _, ok := obj[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
	if len(obj) != 5 {
		t.Errorf("expected 5 keys, got %d", len(obj))
	}
	if _, ok := obj["Data"]; ok {
		t.Error("legacy Data key must not be written")
	}
}

func TestRoundTrip(t *testing.T) {
	sub := time.Date(2024, 6, 7, 14, 44, 8, 774714123, time.FixedZone("CEST", 2*3600))
	tests := []struct {
		name  string
		entry Entry
	}{
		{"defaults", New()},
		{"sample", sampleEntry()},
		{"close marker", Entry{
			Kind:    KindClose,
			Time:    sub,
			UUID:    uuid.New(),
			Summary: "done",
			Data:    map[string]any{"metric": float64(101), "tags": []any{"a", true, nil}},
		}},
		{"html and unicode", Entry{
			Kind:    KindLog,
			Time:    time.Now(),
			UUID:    uuid.New(),
			Summary: "<b>&</b> café  ",
			Data:    map[string]any{"k<>": "v&"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Marshal(tt.entry)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			got, err := Unmarshal(b)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !got.Equal(tt.entry) {
				t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", tt.entry, got)
			}
		})
	}
}

func TestRoundTrip_ZeroTimeIsUTC(t *testing.T) {
	b, err := Marshal(New())
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Time.Equal(ZeroTime) || got.Time.Location() != time.UTC {
		t.Errorf("expected ZeroTime in UTC, got %v (%v)", got.Time, got.Time.Location())
	}
}

func TestEntry_JSONMethods(t *testing.T) {
	in := sampleEntry()
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out Entry
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestDecode_Empty(t *testing.T) {
	e, err := Unmarshal([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.Kind != KindUnknown {
		t.Errorf("expected unknown kind, got %v", e.Kind)
	}
	if !e.Time.Equal(ZeroTime) {
		t.Errorf("expected zero time, got %v", e.Time)
	}
	if e.UUID != ZeroUUID {
		t.Errorf("expected zero uuid, got %v", e.UUID)
	}
	if e.Summary != "" {
		t.Errorf("expected empty summary, got %q", e.Summary)
	}
	if e.Data == nil || len(e.Data) != 0 {
		t.Errorf("expected empty non-nil data, got %v", e.Data)
	}
}

func TestDecode_Partial(t *testing.T) {
	e, err := Unmarshal([]byte(`{"Summary": "hi"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := New()
	want.Summary = "hi"
	if !e.Equal(want) {
		t.Errorf("expected %+v, got %+v", want, e)
	}
}

func TestDecode_PythonWrittenLine(t *testing.T) {
	line := `{"Type": "log", "Time": "2023-06-07T14:44:08.774745", "UUID": "60af77d8-f024-4988-aa50-36699360be2b", "Summary": "this is a test", "DataJSON": "{\"metric\": 100}"}`

	e, err := Unmarshal([]byte(line))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2023, 6, 7, 14, 44, 8, 774745000, time.Local)
	if !e.Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, e.Time)
	}
	if e.Data["metric"] != json.Number("100") {
		t.Errorf("expected metric 100, got %v", e.Data["metric"])
	}
}

func TestDecode_DataJSONNull(t *testing.T) {
	e, err := Unmarshal([]byte(`{"DataJSON": "null"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Data == nil || len(e.Data) != 0 {
		t.Errorf("expected empty data, got %v", e.Data)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", `{"Type": `},
		{"array", `[1, 2]`},
		{"null", `null`},
		{"bad uuid", `{"UUID": "not-a-uuid"}`},
		{"bad time", `{"Time": "yesterday"}`},
		{"bad data json", `{"DataJSON": "{not json"}`},
		{"data json not object", `{"DataJSON": "[1,2]"}`},
		{"data json trailing value", `{"DataJSON": "{} {}"}`},
		{"unknown type", `{"Type": "error"}`},
		{"type not string", `{"Type": 3}`},
		{"summary null", `{"Summary": null}`},
		{"nested data object", `{"DataJSON": {"metric": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.line))
			if err == nil {
				t.Fatal("expected decoding error")
			}
			if !errors.Is(err, rtErrors.ErrDecoding) {
				t.Errorf("expected DECODING_FAILED, got %v", err)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"0001-01-01T00:00:00+00:00", ZeroTime},
		{"2023-01-01T03:03:00Z", time.Date(2023, 1, 1, 3, 3, 0, 0, time.UTC)},
		{"2023-01-01T05:03:00.5+02:00", time.Date(2023, 1, 1, 3, 3, 0, 500000000, time.UTC)},
		{"2023-01-01 03:03:00", time.Date(2023, 1, 1, 3, 3, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRoundTrip_Integers(t *testing.T) {
	in := New()
	in.Data = map[string]any{
		"step":  100,
		"big":   int64(9007199254740993),
		"ratio": 0.5,
	}

	b, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(in) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", in.Data, got.Data)
	}
	if got.Data["step"] != json.Number("100") {
		t.Errorf("expected step as json.Number, got %T %v", got.Data["step"], got.Data["step"])
	}
	if got.Data["big"] != json.Number("9007199254740993") {
		t.Errorf("expected big integer to keep its digits, got %v", got.Data["big"])
	}

	again, err := Marshal(got)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if string(again) != string(b) {
		t.Errorf("re-encoding changed the line:\nfirst  %s\nsecond %s", b, again)
	}
}

func TestEntry_EqualComparesEncodedData(t *testing.T) {
	a, b := New(), New()
	a.Data = map[string]any{"n": 1, "nested": map[string]any{"x": int64(2)}}
	b.Data = map[string]any{"n": json.Number("1"), "nested": map[string]any{"x": float64(2)}}
	if !a.Equal(b) {
		t.Error("expected numerically identical data to be equal")
	}

	b.Data["n"] = json.Number("2")
	if a.Equal(b) {
		t.Error("expected different numbers to differ")
	}
}

func TestTime_OffsetSeconds(t *testing.T) {
	lmt := time.FixedZone("LMT", 17*60+30)
	in := time.Date(1890, 3, 4, 5, 6, 7, 8, lmt)

	s := FormatTime(in)
	if s != "1890-03-04T05:06:07.000000008+00:17:30" {
		t.Errorf("unexpected rendering %q", s)
	}
	got, err := ParseTime(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(in) {
		t.Errorf("expected %v, got %v", in, got)
	}
	if _, offset := got.Zone(); offset != 17*60+30 {
		t.Errorf("expected offset 1050s, got %d", offset)
	}

	e := New()
	e.Time = in
	b, err := Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.Time.Equal(in) {
		t.Errorf("entry time drifted: want %v, got %v", in, decoded.Time)
	}
}

func TestEntry_Has(t *testing.T) {
	e := sampleEntry()
	if !e.Has("here is") {
		t.Error("expected key to be present")
	}
	if e.Has("metric") {
		t.Error("expected key to be absent")
	}
}
