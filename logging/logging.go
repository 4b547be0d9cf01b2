package logging

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync/atomic"

	"github.com/lumenvox/go-loginit/logging/logfields"
)

// Levels accepted in logging configuration files on top of the slog ones.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelFatal = slog.LevelError + 4
	LevelOff   = slog.Level(math.MaxInt32)
)

// ErrInvalidLogLevel is returned when a level name cannot be parsed.
var ErrInvalidLogLevel = errors.New("invalid log level: use trace, debug, info, warn, error, fatal or off")

var (
	current     atomic.Pointer[backend] // backend every category logger resolves against
	initialized atomic.Bool             // set once by InitLogging or SetLogger, never reset
	rootLogger  = Named("")
)

// init installs the default backend.
func init() {
	// This is done, so that anyone requesting a logger before
	// it's initialized will get the default one, and follows the
	// configured one once someone calls InitLogging
	current.Store(newPreInitBackend())
}

// newPreInitBackend returns the backend used until logging is initialized:
// JSON on stdout at info.
func newPreInitBackend() *backend {
	root := new(slog.LevelVar)
	root.Set(slog.LevelInfo)
	return &backend{
		handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: LevelTrace}),
		root:    root,
	}
}

// GetLogLevel converts a string to slog.Level
func GetLogLevel(levelStr string) (slog.Level, error) {

	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "fatal":
		return LevelFatal, nil
	case "off", "none":
		return LevelOff, nil
	default:
		return slog.LevelInfo, ErrInvalidLogLevel
	}
}

// SetLogger allows customers to inject their own logger. This counts as
// initialization: later InitLogging calls are ignored with a warning.
func SetLogger(customLogger *slog.Logger) {

	// Filtering is left to the injected handler.
	root := new(slog.LevelVar)
	root.Set(LevelTrace)

	current.Store(&backend{
		handler: customLogger.Handler(),
		root:    root,
	})
	initialized.Store(true)
}

// GetLogger returns the root logger, and whether logging was initialized,
// or is still using the default.
func GetLogger() (*slog.Logger, bool) {

	return rootLogger, initialized.Load()
}

// Named returns the logger for a dotted category name such as
// "com.example.util". It may be called before initialization; records
// always go to the backend installed at the time they are written.
func Named(name string) *slog.Logger {

	return slog.New(newCategoryHandler(name))
}

// SetRootLevel changes the root severity threshold of the installed backend.
func SetRootLevel(level slog.Level) {

	current.Load().root.Set(level)
}

// RootLevel reports the root severity threshold of the installed backend.
func RootLevel() slog.Level {

	return current.Load().root.Level()
}

// Fatal logs msg at error level and exits the process.
func Fatal(logger *slog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(-1)
}

// levelName is the lower-case name printed for a level.
func levelName(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "trace"
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	case level < LevelFatal:
		return "error"
	default:
		return "fatal"
	}
}

func loggerAttr(name string) slog.Attr {
	return slog.String(logfields.Logger, name)
}
