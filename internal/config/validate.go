package config

import (
	"fmt"
	"strings"
)

// Validate checks driver, logging level and format, and hook definitions.
func Validate(cfg *Config) error {
	var errors []string

	validDrivers := map[string]bool{
		"local":  true,
		"memory": true,
		"sqlite": true,
		"":       true, // defaults to local
	}
	if !validDrivers[cfg.Storage.Driver] {
		errors = append(errors, fmt.Sprintf("invalid storage driver: %s", cfg.Storage.Driver))
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		errors = append(errors, "sqlite storage requires a path")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"":      true,
	}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errors = append(errors, fmt.Sprintf("invalid logging level: %s", cfg.Logging.Level))
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"":     true,
	}
	if !validFormats[cfg.Logging.Format] {
		errors = append(errors, fmt.Sprintf("invalid logging format: %s", cfg.Logging.Format))
	}

	validHookTypes := map[string]bool{
		"shell":   true,
		"webhook": true,
		"log":     true,
	}
	for i, h := range cfg.Hooks {
		if h.Name == "" {
			errors = append(errors, fmt.Sprintf("hook %d: name is required", i))
		}
		if !validHookTypes[h.Type] {
			errors = append(errors, fmt.Sprintf("hook %s: invalid type: %s", h.Name, h.Type))
		}
		if h.Type == "shell" && h.Command == "" {
			errors = append(errors, fmt.Sprintf("hook %s: shell hook requires a command", h.Name))
		}
		if h.Type == "webhook" && h.URL == "" {
			errors = append(errors, fmt.Sprintf("hook %s: webhook requires a url", h.Name))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
