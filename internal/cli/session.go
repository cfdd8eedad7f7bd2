package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/stxkxs/runtrace/internal/config"
	rtErrors "github.com/stxkxs/runtrace/internal/errors"
	"github.com/stxkxs/runtrace/internal/event"
	"github.com/stxkxs/runtrace/internal/storage"
	"github.com/stxkxs/runtrace/internal/telemetry"
)

// session holds what every trace command needs: resolved config, the
// storage backend it names, a logger and the configured hooks.
type session struct {
	cfg    *config.Config
	fs     storage.FS
	logger *telemetry.Logger
	events *event.Bus
}

func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	events, err := newEventBus(cfg.Hooks, logger)
	if err != nil {
		logger.Close()
		return nil, err
	}

	fs, err := storage.New(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		logger.Close()
		return nil, err
	}
	logger.Debug("storage ready", "driver", cfg.Storage.Driver, "log_dir", cfg.LogDir, "hooks", events.Len())

	return &session{cfg: cfg, fs: fs, logger: logger, events: events}, nil
}

func (s *session) Close() {
	s.events.Wait()
	if err := storage.Close(s.fs); err != nil {
		s.logger.Warn("failed to close storage", "error", err)
	}
	s.logger.Close()
}

// loadConfig reads the config file, then applies RUNTRACE_* environment
// overrides. Only variables present in the environment override; file
// values keep their ${VAR} interpolation.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if cfgFile != "" {
		if _, statErr := os.Stat(cfgFile); statErr != nil {
			return nil, rtErrors.Wrap(rtErrors.CodeInvalidArgument, "config file not found", statErr).
				WithSuggestion("check the --config path")
		}
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := map[string]*string{
		"log_dir":        &cfg.LogDir,
		"storage.driver": &cfg.Storage.Driver,
		"storage.path":   &cfg.Storage.Path,
		"logging.level":  &cfg.Logging.Level,
		"logging.format": &cfg.Logging.Format,
		"logging.file":   &cfg.Logging.File,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(envName(key)); ok && v != "" {
			*dst = v
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envName maps a config key to its environment variable, matching the
// names viper binds: storage.path becomes RUNTRACE_STORAGE_PATH.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key))
}

func newLogger(cfg *config.Config) (*telemetry.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	logger, err := telemetry.NewLoggerWithLevel(level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if cfg.Logging.File != "" {
		if err := logger.WithFile(cfg.Logging.File); err != nil {
			return nil, err
		}
	}
	return logger, nil
}

// newEventBus registers one hook per config entry. It returns nil when no
// hooks are configured.
func newEventBus(hooks []config.HookConfig, logger *telemetry.Logger) (*event.Bus, error) {
	if len(hooks) == 0 {
		return nil, nil
	}

	bus := event.NewBus(logger)
	for _, h := range hooks {
		hook, err := event.NewHook(event.HookSpec{
			Name:     h.Name,
			Type:     h.Type,
			Events:   h.Events,
			Blocking: h.Blocking,
			Command:  h.Command,
			URL:      h.URL,
			Level:    h.Level,
		}, logger)
		if err != nil {
			return nil, rtErrors.Wrap(rtErrors.CodeInvalidArgument, "invalid hook configuration", err)
		}
		bus.Register(hook)
	}
	return bus, nil
}
