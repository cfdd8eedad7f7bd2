package config

// FileName is the project configuration file looked up by Load.
const FileName = "runtrace.yaml"

// Config represents the project configuration (runtrace.yaml)
type Config struct {
	LogDir  string        `yaml:"log_dir" json:"log_dir"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Hooks   []HookConfig  `yaml:"hooks,omitempty" json:"hooks,omitempty"`
}

// StorageConfig selects the trace backend
type StorageConfig struct {
	Driver string `yaml:"driver" json:"driver"` // local, memory, sqlite
	Path   string `yaml:"path" json:"path"`     // database file for sqlite
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text, json
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// HookConfig defines a trace lifecycle hook.
type HookConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Type     string   `yaml:"type" json:"type"`     // shell, webhook, log
	Events   []string `yaml:"events" json:"events"` // trace.opened, trace.flushed, trace.closed
	Blocking bool     `yaml:"blocking" json:"blocking"`
	Command  string   `yaml:"command,omitempty" json:"command,omitempty"` // for shell hooks
	URL      string   `yaml:"url,omitempty" json:"url,omitempty"`         // for webhook hooks
	Level    string   `yaml:"level,omitempty" json:"level,omitempty"`     // for log hooks (debug, info, warn)
}
