package event

import "time"

// EventType identifies the kind of lifecycle event.
type EventType string

const (
	// Trace lifecycle
	TraceOpened  EventType = "trace.opened"
	TraceFlushed EventType = "trace.flushed"
	TraceClosed  EventType = "trace.closed"
)

// ParseEventType validates a configured event name.
func ParseEventType(s string) (EventType, bool) {
	switch t := EventType(s); t {
	case TraceOpened, TraceFlushed, TraceClosed:
		return t, true
	}
	return "", false
}

// Event carries data about a lifecycle occurrence.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	}
}
