package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lumenvox/go-loginit/logging/logfields"
)

// Log formats understood by the configuration file.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Output destinations understood by the configuration file.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// FileRotationOption provides all parameters for file rotation
type FileRotationOption struct {
	FileName   string
	MaxSize    int // MBs
	MaxAge     int // days
	MaxBackups int
	LocalTime  bool
	Compress   bool
}

// newFileRotationWriter creates the rotating writer behind the file output.
// MaxSize defaults to 100 MBs; the default is not to remove old log files
// based on age and to retain all backups.
func newFileRotationWriter(option FileRotationOption) *lumberjack.Logger {
	if option.MaxSize <= 0 {
		option.MaxSize = 100
	}
	return &lumberjack.Logger{
		Filename:   option.FileName,
		MaxSize:    option.MaxSize,
		MaxAge:     option.MaxAge,
		MaxBackups: option.MaxBackups,
		LocalTime:  option.LocalTime,
		Compress:   option.Compress,
	}
}

// newSinkHandler creates a handler writing every level to w. Thresholds are
// applied in front of it by the category handlers.
func newSinkHandler(w io.Writer, format string, timestamps bool, addSource bool) slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   addSource,
		Level:       LevelTrace,
		ReplaceAttr: ReplaceAttrFn,
	}
	if !timestamps {
		opts.ReplaceAttr = ReplaceAttrFnWithoutTimestamp
	}

	if format == LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ReplaceAttrFn prints timestamps as RFC3339 and levels in lower case.
func ReplaceAttrFn(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
	case slog.LevelKey:
		level, ok := a.Value.Any().(slog.Level)
		if !ok {
			return slog.String(a.Key, strings.ToLower(a.Value.String()))
		}
		return slog.String(a.Key, levelName(level))
	case "err":
		// Uniform the attribute identifying the error
		return slog.Attr{Key: logfields.Error, Value: a.Value}
	}
	return a
}

// ReplaceAttrFnWithoutTimestamp is ReplaceAttrFn with timestamps dropped.
func ReplaceAttrFnWithoutTimestamp(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return ReplaceAttrFn(groups, a)
}

// NewMultiSlogHandler creates a slog.Handler that supports multiple
// underlying handlers, such as to output to the console and a file.
func NewMultiSlogHandler(handler slog.Handler) *multiSlogHandler {
	return &multiSlogHandler{
		handlers: []slog.Handler{handler},
	}
}

type multiSlogHandler struct {
	handlers []slog.Handler
}

func (i *multiSlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range i.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (i *multiSlogHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs error
	for _, h := range i.handlers {
		if h.Enabled(ctx, record.Level) {
			// Each handler gets its own copy of the attrs.
			if err := h.Handle(ctx, record.Clone()); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	}
	return errs
}

func (i *multiSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, 0, len(i.handlers))
	for _, h := range i.handlers {
		newHandlers = append(newHandlers, h.WithAttrs(attrs))
	}
	return &multiSlogHandler{
		handlers: newHandlers,
	}
}

func (i *multiSlogHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, 0, len(i.handlers))
	for _, h := range i.handlers {
		newHandlers = append(newHandlers, h.WithGroup(name))
	}
	return &multiSlogHandler{
		handlers: newHandlers,
	}
}

func (i *multiSlogHandler) AddHandlers(handlers ...slog.Handler) *multiSlogHandler {
	return &multiSlogHandler{
		handlers: slices.Concat(i.handlers, handlers),
	}
}
