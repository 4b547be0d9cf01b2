package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/ini.v1"
)

// logConfig is the parsed form of a logging configuration file.
type logConfig struct {
	level      slog.Level
	format     string
	outputs    []string
	timestamps bool
	addSource  bool
	service    string
	addRunId   bool
	file       FileRotationOption
	levels     map[string]slog.Level
	grpc       grpcOptions
}

// defaultLogConfig is the built-in configuration: text on the console with
// timestamps, every category at the root threshold.
func defaultLogConfig(debug bool) *logConfig {
	cfg := &logConfig{
		level:      slog.LevelDebug,
		format:     LogFormatText,
		outputs:    []string{OutputStdout},
		timestamps: true,
	}
	if !debug {
		cfg.level = slog.LevelError
	}
	return cfg
}

// loadLogConfig reads a logging configuration file. Missing keys take the
// values of the built-in debug configuration, except for the root level,
// which defaults to info.
func loadLogConfig(path string) (*logConfig, error) {

	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultLogConfig(true)
	cfg.level = slog.LevelInfo

	root := file.Section(ini.DefaultSection)
	if root.HasKey("level") {
		if cfg.level, err = GetLogLevel(root.Key("level").String()); err != nil {
			return nil, fmt.Errorf("level %q: %w", root.Key("level").String(), err)
		}
	}

	if root.HasKey("format") {
		cfg.format = strings.ToLower(strings.TrimSpace(root.Key("format").String()))
		if cfg.format != LogFormatText && cfg.format != LogFormatJSON {
			return nil, fmt.Errorf("invalid format %q: use text or json", cfg.format)
		}
	}

	if root.HasKey("output") {
		cfg.outputs = nil
		for _, output := range strings.Split(root.Key("output").String(), ",") {
			output = strings.ToLower(strings.TrimSpace(output))
			switch output {
			case "":
				continue
			case OutputStdout, OutputStderr, OutputFile:
				cfg.outputs = append(cfg.outputs, output)
			default:
				return nil, fmt.Errorf("invalid output %q: use stdout, stderr or file", output)
			}
		}
		if len(cfg.outputs) == 0 {
			return nil, fmt.Errorf("output is empty")
		}
	}

	if cfg.timestamps, err = boolKey(root, "timestamps", cfg.timestamps); err != nil {
		return nil, err
	}
	if cfg.addSource, err = boolKey(root, "add_source", false); err != nil {
		return nil, err
	}
	if cfg.addRunId, err = boolKey(root, "add_run_id", false); err != nil {
		return nil, err
	}
	cfg.service = strings.TrimSpace(root.Key("service").String())

	if err = loadFileSection(file, cfg); err != nil {
		return nil, err
	}

	if section, err := file.GetSection("loggers"); err == nil {
		cfg.levels = make(map[string]slog.Level, len(section.Keys()))
		for _, key := range section.Keys() {
			level, err := GetLogLevel(key.String())
			if err != nil {
				return nil, fmt.Errorf("logger %s level %q: %w", key.Name(), key.String(), err)
			}
			cfg.levels[key.Name()] = level
		}
	}

	if section, err := file.GetSection("grpc"); err == nil {
		if cfg.grpc.enabled, err = boolKey(section, "enabled", false); err != nil {
			return nil, err
		}
		if section.HasKey("verbosity") {
			if cfg.grpc.verbosity, err = section.Key("verbosity").Int(); err != nil {
				return nil, fmt.Errorf("grpc verbosity: %w", err)
			}
		}
	}

	return cfg, nil
}

// loadFileSection fills the rotation options from the [file] section. It is
// required only when the file output is selected.
func loadFileSection(file *ini.File, cfg *logConfig) (err error) {

	section, sectionErr := file.GetSection("file")
	if sectionErr != nil {
		if hasOutput(cfg.outputs, OutputFile) {
			return fmt.Errorf("output file requires a [file] section with a path")
		}
		return nil
	}

	cfg.file.FileName = strings.TrimSpace(section.Key("path").String())
	if cfg.file.FileName == "" && hasOutput(cfg.outputs, OutputFile) {
		return fmt.Errorf("output file requires [file] path")
	}

	for name, target := range map[string]*int{
		"max_size_mb":  &cfg.file.MaxSize,
		"max_age_days": &cfg.file.MaxAge,
		"max_backups":  &cfg.file.MaxBackups,
	} {
		if !section.HasKey(name) {
			continue
		}
		if *target, err = section.Key(name).Int(); err != nil {
			return fmt.Errorf("file %s: %w", name, err)
		}
	}

	if cfg.file.LocalTime, err = boolKey(section, "local_time", false); err != nil {
		return err
	}
	if cfg.file.Compress, err = boolKey(section, "compress", false); err != nil {
		return err
	}

	return nil
}

// boolKey reads an optional boolean key, rejecting values that do not parse.
func boolKey(section *ini.Section, name string, def bool) (bool, error) {
	if !section.HasKey(name) {
		return def, nil
	}
	value, err := section.Key(name).Bool()
	if err != nil {
		return def, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func hasOutput(outputs []string, want string) bool {
	for _, output := range outputs {
		if output == want {
			return true
		}
	}
	return false
}
