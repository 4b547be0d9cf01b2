package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/lumenvox/go-loginit/logging/logfields"
)

// SettingsProvider is any settings object able to name a logging
// configuration file. An empty result means the built-in defaults.
type SettingsProvider interface {
	GetLogConfiguration() string
}

// Option adjusts how InitLogging configures the backend.
type Option func(*initOptions)

type initOptions struct {
	debug     bool
	output    io.Writer
	grpc      grpcOptions
	grpcForce bool
}

// WithDebug selects the debug configuration. Without it the built-in
// defaults only emit error and above.
func WithDebug(debug bool) Option {
	return func(o *initOptions) {
		o.debug = debug
	}
}

// WithOutput replaces the console (stdout or stderr) with w.
func WithOutput(w io.Writer) Option {
	return func(o *initOptions) {
		o.output = w
	}
}

// WithGrpcLogging routes gRPC's internal logs through the "grpc" logger,
// whatever the configuration file says.
func WithGrpcLogging(verbosity int) Option {
	return func(o *initOptions) {
		o.grpc = grpcOptions{enabled: true, verbosity: verbosity}
		o.grpcForce = true
	}
}

// InitLogging configures the logging backend. Only the first call is
// applied; subsequent calls are ignored with a warning so that the backend
// is never configured twice.
//
// configPath names a logging configuration file. When it is empty the
// built-in defaults are used, and unless WithDebug(true) is given the root
// threshold is raised to error.
//
// If the file cannot be loaded the built-in defaults are installed instead
// and the error is returned. Logging still counts as initialized.
func InitLogging(configPath string, opts ...Option) error {

	if !initialized.CompareAndSwap(false, true) {
		rootLogger.Warn("logging already initialized, ignoring duplicate call", logfields.Path, configPath)
		return nil
	}

	options := &initOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if configPath == "" {
		configure(defaultLogConfig(options.debug), options)
		rootLogger.Info("logging initialized with default settings")
		return nil
	}

	cfg, err := loadLogConfig(configPath)
	if err == nil {
		err = configure(cfg, options)
	}
	if err != nil {
		configure(defaultLogConfig(options.debug), options)
		rootLogger.Error("unable to configure logging from file, using default settings",
			logfields.Path, configPath,
			logfields.Error, err)
		return fmt.Errorf("configure logging from %s: %w", configPath, err)
	}

	rootLogger.Info("logging initialized from configuration file", logfields.Path, configPath)
	return nil
}

// InitLoggingFromSettings configures the logging backend from the file named
// by settings, or with the built-in defaults when settings is nil.
func InitLoggingFromSettings(settings SettingsProvider, opts ...Option) error {

	var configPath string
	if settings != nil {
		configPath = settings.GetLogConfiguration()
	}
	return InitLogging(configPath, opts...)
}

// configure builds a backend from cfg and installs it.
func configure(cfg *logConfig, options *initOptions) error {

	handlers := make([]slog.Handler, 0, len(cfg.outputs))
	for _, output := range cfg.outputs {
		var w io.Writer
		switch output {
		case OutputStdout:
			w = os.Stdout
		case OutputStderr:
			w = os.Stderr
		case OutputFile:
			w = newFileRotationWriter(cfg.file)
		default:
			return fmt.Errorf("invalid output %q", output)
		}
		if options.output != nil && output != OutputFile {
			w = options.output
		}
		handlers = append(handlers, newSinkHandler(w, cfg.format, cfg.timestamps, cfg.addSource))
	}

	handler := handlers[0]
	if len(handlers) > 1 {
		handler = NewMultiSlogHandler(handlers[0]).AddHandlers(handlers[1:]...)
	}

	var attrs []slog.Attr
	if cfg.service != "" {
		attrs = append(attrs, slog.String(logfields.Service, cfg.service))
	}
	if cfg.addRunId {
		attrs = append(attrs, slog.String(logfields.RunID, uuid.NewString()))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	root := new(slog.LevelVar)
	root.Set(cfg.level)

	current.Store(&backend{
		handler: handler,
		root:    root,
		levels:  cfg.levels,
	})

	grpc := cfg.grpc
	if options.grpcForce {
		grpc = options.grpc
	}
	if grpc.enabled {
		installGrpcLogger(grpc.verbosity)
	}

	return nil
}
