package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"
)

// Hook processes lifecycle events.
type Hook interface {
	// Name returns the hook's identifier.
	Name() string
	// Matches returns true if the hook should handle this event type.
	Matches(t EventType) bool
	// IsBlocking returns true if the emitter should wait for this hook.
	IsBlocking() bool
	// Handle processes an event. For blocking hooks, an error is returned to the emitter.
	Handle(ev Event) error
}

// baseHook provides shared fields for all hook implementations.
type baseHook struct {
	name     string
	events   []EventType
	blocking bool
}

func (h *baseHook) Name() string     { return h.name }
func (h *baseHook) IsBlocking() bool { return h.blocking }
func (h *baseHook) Matches(t EventType) bool {
	if len(h.events) == 0 {
		return true // no filter matches everything
	}
	for _, ev := range h.events {
		if ev == t {
			return true
		}
	}
	return false
}

// ShellHook executes a shell command with the event in environment variables.
//
// Environment variables set:
//   - RUNTRACE_EVENT_TYPE: the event type string
//   - RUNTRACE_EVENT_JSON: JSON-encoded event
//   - RUNTRACE_TRACE_PATH: the trace path, when the event carries one
type ShellHook struct {
	baseHook
	Command string
	Stdout  io.Writer
	Stderr  io.Writer
}

func NewShellHook(name, command string, events []EventType, blocking bool) *ShellHook {
	return &ShellHook{
		baseHook: baseHook{name: name, events: events, blocking: blocking},
		Command:  command,
		Stdout:   os.Stderr,
		Stderr:   os.Stderr,
	}
}

func (h *ShellHook) Handle(ev Event) error {
	eventJSON, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	cmd := exec.Command("sh", "-c", h.Command)
	cmd.Env = append(os.Environ(),
		"RUNTRACE_EVENT_TYPE="+string(ev.Type),
		"RUNTRACE_EVENT_JSON="+string(eventJSON),
	)
	if path, ok := ev.Data["path"].(string); ok {
		cmd.Env = append(cmd.Env, "RUNTRACE_TRACE_PATH="+path)
	}
	cmd.Stdout = h.Stdout
	cmd.Stderr = h.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("shell hook %s failed: %w", h.name, err)
	}
	return nil
}

// WebhookHook sends an HTTP POST with event JSON to a URL.
type WebhookHook struct {
	baseHook
	URL     string
	Timeout time.Duration
}

func NewWebhookHook(name, url string, events []EventType, blocking bool) *WebhookHook {
	return &WebhookHook{
		baseHook: baseHook{name: name, events: events, blocking: blocking},
		URL:      url,
		Timeout:  10 * time.Second,
	}
}

func (h *WebhookHook) Handle(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	client := &http.Client{Timeout: h.Timeout}
	resp, err := client.Post(h.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook %s failed: %w", h.name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook %s returned status %d", h.name, resp.StatusCode)
	}
	return nil
}

// LogHook logs events at the configured level. Always non-blocking.
type LogHook struct {
	baseHook
	logger Logger
	level  string // "debug", "info", "warn"
}

// FullLogger extends Logger with the other levels LogHook can use.
type FullLogger interface {
	Logger
	Info(msg string, keyvals ...any)
	Debug(msg string, keyvals ...any)
}

func NewLogHook(name string, events []EventType, logger Logger, level string) *LogHook {
	if level == "" {
		level = "info"
	}
	return &LogHook{
		baseHook: baseHook{name: name, events: events, blocking: false},
		logger:   logger,
		level:    level,
	}
}

func (h *LogHook) Handle(ev Event) error {
	msg := fmt.Sprintf("[event] %s", ev.Type)
	keyvals := make([]any, 0, len(ev.Data)*2+2)
	keyvals = append(keyvals, "event_type", string(ev.Type))
	for k, v := range ev.Data {
		keyvals = append(keyvals, k, v)
	}

	if fl, ok := h.logger.(FullLogger); ok {
		switch h.level {
		case "debug":
			fl.Debug(msg, keyvals...)
		case "warn":
			fl.Warn(msg, keyvals...)
		default:
			fl.Info(msg, keyvals...)
		}
	} else {
		h.logger.Warn(msg, keyvals...)
	}
	return nil
}

// HookSpec describes a hook to build with NewHook.
type HookSpec struct {
	Name     string
	Type     string // shell, webhook, log
	Events   []string
	Blocking bool
	Command  string
	URL      string
	Level    string
}

// NewHook builds a hook from its description.
func NewHook(spec HookSpec, logger Logger) (Hook, error) {
	events := make([]EventType, 0, len(spec.Events))
	for _, name := range spec.Events {
		t, ok := ParseEventType(name)
		if !ok {
			return nil, fmt.Errorf("hook %s: unknown event %q", spec.Name, name)
		}
		events = append(events, t)
	}

	switch spec.Type {
	case "shell":
		if spec.Command == "" {
			return nil, fmt.Errorf("hook %s: shell hook requires a command", spec.Name)
		}
		return NewShellHook(spec.Name, spec.Command, events, spec.Blocking), nil
	case "webhook":
		if spec.URL == "" {
			return nil, fmt.Errorf("hook %s: webhook requires a url", spec.Name)
		}
		return NewWebhookHook(spec.Name, spec.URL, events, spec.Blocking), nil
	case "log":
		if logger == nil {
			return nil, fmt.Errorf("hook %s: log hook requires a logger", spec.Name)
		}
		return NewLogHook(spec.Name, events, logger, spec.Level), nil
	}
	return nil, fmt.Errorf("hook %s: unknown type %q", spec.Name, spec.Type)
}
