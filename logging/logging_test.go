package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is shared by handlers that may write concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// resetLogging puts the package back in its pre-initialization state, with
// the default backend writing to w, and restores the previous state when the
// test ends.
func resetLogging(t *testing.T, w io.Writer) {
	t.Helper()

	prevBackend := current.Load()
	prevInitialized := initialized.Load()
	t.Cleanup(func() {
		current.Store(prevBackend)
		initialized.Store(prevInitialized)
	})

	root := new(slog.LevelVar)
	root.Set(slog.LevelInfo)
	current.Store(&backend{
		handler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LevelTrace}),
		root:    root,
	})
	initialized.Store(false)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logging.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

type fakeSettings struct {
	path string
}

func (s fakeSettings) GetLogConfiguration() string {
	return s.path
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "trace", want: LevelTrace},
		{in: "DeBuG", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "Warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "fatal", want: LevelFatal},
		{in: "off", want: LevelOff},
		{in: "Invalid", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := GetLogLevel(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLogLevel)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInitLoggingFromFile(t *testing.T) {
	resetLogging(t, io.Discard)
	out := &syncBuffer{}

	path := writeConfig(t, "level = info\ntimestamps = false\n")
	require.NoError(t, InitLogging(path, WithOutput(out)))

	_, ok := GetLogger()
	assert.True(t, ok)
	assert.Equal(t, slog.LevelInfo, RootLevel())
	assert.Contains(t, out.String(), "logging initialized from configuration file")
	assert.Contains(t, out.String(), path)
	assert.Contains(t, out.String(), "level=info")
	assert.NotContains(t, out.String(), "time=")
}

func TestInitLoggingDefaultsTwice(t *testing.T) {
	resetLogging(t, io.Discard)
	out := &syncBuffer{}

	require.NoError(t, InitLogging("", WithDebug(true), WithOutput(out)))
	assert.Equal(t, slog.LevelDebug, RootLevel())
	assert.Contains(t, out.String(), "logging initialized with default settings")

	require.NoError(t, InitLogging("", WithDebug(true), WithOutput(io.Discard)))
	assert.Equal(t, 1, strings.Count(out.String(), "logging initialized"))
	assert.Contains(t, out.String(), "level=warn")
	assert.Contains(t, out.String(), "logging already initialized, ignoring duplicate call")
}

func TestInitLoggingDefaultsRaiseRootToError(t *testing.T) {
	resetLogging(t, io.Discard)
	out := &syncBuffer{}

	require.NoError(t, InitLogging("", WithOutput(out)))
	assert.Equal(t, slog.LevelError, RootLevel())

	logger, _ := GetLogger()
	logger.Warn("hidden")
	logger.Error("shown")
	assert.NotContains(t, out.String(), "logging initialized")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestDuplicateCallWarnsWithIgnoredPath(t *testing.T) {
	preInit := &syncBuffer{}
	resetLogging(t, preInit)

	logger := Named("early")
	require.NoError(t, InitLogging("", WithDebug(true), WithOutput(preInit)))
	require.NoError(t, InitLogging("/etc/app/log.conf"))

	assert.Contains(t, preInit.String(), "logging already initialized")
	assert.Contains(t, preInit.String(), "/etc/app/log.conf")

	logger.Debug("after init")
	assert.Contains(t, preInit.String(), "logger=early")
}

func TestInitLoggingConcurrentCallsConfigureOnce(t *testing.T) {
	out := &syncBuffer{}
	resetLogging(t, out)

	const callers = 50
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, InitLogging("", WithDebug(true), WithOutput(out)))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, strings.Count(out.String(), "logging initialized with default settings"))
	assert.Equal(t, callers-1, strings.Count(out.String(), "logging already initialized"))
}

func TestInitLoggingBadFileFallsBackToDefaults(t *testing.T) {
	resetLogging(t, io.Discard)
	out := &syncBuffer{}

	path := filepath.Join(t.TempDir(), "missing.ini")
	err := InitLogging(path, WithOutput(out))
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, ok := GetLogger()
	assert.True(t, ok)
	assert.Equal(t, slog.LevelError, RootLevel())
	assert.Contains(t, out.String(), "unable to configure logging from file")

	assert.NoError(t, InitLogging(""))
}

func TestInitLoggingInvalidLevel(t *testing.T) {
	resetLogging(t, io.Discard)

	path := writeConfig(t, "level = loud\n")
	err := InitLogging(path, WithOutput(io.Discard))
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestInitLoggingFromSettings(t *testing.T) {
	t.Run("nil settings use defaults", func(t *testing.T) {
		resetLogging(t, io.Discard)
		out := &syncBuffer{}

		require.NoError(t, InitLoggingFromSettings(nil, WithDebug(true), WithOutput(out)))
		assert.Contains(t, out.String(), "logging initialized with default settings")
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		resetLogging(t, io.Discard)
		out := &syncBuffer{}

		require.NoError(t, InitLoggingFromSettings(fakeSettings{}, WithDebug(true), WithOutput(out)))
		assert.Contains(t, out.String(), "logging initialized with default settings")
	})

	t.Run("path is forwarded", func(t *testing.T) {
		resetLogging(t, io.Discard)
		out := &syncBuffer{}

		path := writeConfig(t, "level = debug\n")
		require.NoError(t, InitLoggingFromSettings(fakeSettings{path: path}, WithOutput(out)))
		assert.Equal(t, slog.LevelDebug, RootLevel())
		assert.Contains(t, out.String(), path)
	})
}

func TestNamedLoggerLevels(t *testing.T) {
	resetLogging(t, io.Discard)
	out := &syncBuffer{}

	path := writeConfig(t, `level = warn
timestamps = false

[loggers]
com.example = debug
com.example.quiet = error
`)
	require.NoError(t, InitLogging(path, WithOutput(out)))

	Named("com.example.net").Debug("net debug")
	Named("com.example.quiet.db").Warn("quiet warn")
	Named("com.examples").Debug("sibling debug")
	Named("other").Info("other info")
	Named("other").Warn("other warn")

	logged := out.String()
	assert.Contains(t, logged, "net debug")
	assert.Contains(t, logged, "logger=com.example.net")
	assert.NotContains(t, logged, "quiet warn")
	assert.NotContains(t, logged, "sibling debug")
	assert.NotContains(t, logged, "other info")
	assert.Contains(t, logged, "other warn")
}

func TestNamedLoggerKeepsAttrsAcrossReconfiguration(t *testing.T) {
	before := &syncBuffer{}
	resetLogging(t, before)

	logger := Named("component").With("request", "r1").WithGroup("ctx")
	logger.Info("first", "k", "v")
	assert.Contains(t, before.String(), `"request":"r1"`)
	assert.Contains(t, before.String(), `"ctx":{"k":"v"}`)

	after := &syncBuffer{}
	path := writeConfig(t, "timestamps = false\nformat = json\n")
	require.NoError(t, InitLogging(path, WithOutput(after)))

	logger.Info("second", "k", "v")
	assert.Contains(t, after.String(), `"msg":"second"`)
	assert.Contains(t, after.String(), `"logger":"component"`)
	assert.Contains(t, after.String(), `"ctx":{"k":"v"}`)
	assert.NotContains(t, before.String(), "second")
}

func TestInitLoggingAttrs(t *testing.T) {
	resetLogging(t, io.Discard)
	out := &syncBuffer{}

	path := writeConfig(t, "service = billing\nadd_run_id = true\ntimestamps = false\n")
	require.NoError(t, InitLogging(path, WithOutput(out)))

	assert.Contains(t, out.String(), "service=billing")
	assert.Contains(t, out.String(), "run_id=")
}

func TestInitLoggingFileOutput(t *testing.T) {
	resetLogging(t, io.Discard)
	console := &syncBuffer{}

	logFile := filepath.Join(t.TempDir(), "app.log")
	path := writeConfig(t, "output = stdout, file\ntimestamps = false\n\n[file]\npath = "+logFile+"\nmax_backups = 2\n")
	require.NoError(t, InitLogging(path, WithOutput(console)))

	Named("disk").Warn("to both")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "to both")
	assert.Contains(t, console.String(), "to both")
}

func TestInitLoggingFileOutputRequiresPath(t *testing.T) {
	resetLogging(t, io.Discard)

	path := writeConfig(t, "output = file\n")
	err := InitLogging(path, WithOutput(io.Discard))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[file]")
}

func TestSetLogger(t *testing.T) {
	resetLogging(t, io.Discard)
	out := &syncBuffer{}

	SetLogger(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})))
	_, ok := GetLogger()
	assert.True(t, ok)

	require.NoError(t, InitLogging("/etc/app/log.conf"))
	assert.Contains(t, out.String(), "logging already initialized")

	Named("x").Debug("filtered by injected handler")
	assert.NotContains(t, out.String(), "filtered by injected handler")
}

func TestSetRootLevel(t *testing.T) {
	resetLogging(t, io.Discard)
	out := &syncBuffer{}

	require.NoError(t, InitLogging("", WithDebug(true), WithOutput(out)))
	SetRootLevel(slog.LevelWarn)
	assert.Equal(t, slog.LevelWarn, RootLevel())

	Named("a").Info("dropped")
	Named("a").Warn("kept")
	assert.NotContains(t, out.String(), "dropped")
	assert.Contains(t, out.String(), "kept")
}

func TestReplaceAttrFnLevelNames(t *testing.T) {
	for level, want := range map[slog.Level]string{
		LevelTrace:      "trace",
		slog.LevelDebug: "debug",
		slog.LevelInfo:  "info",
		slog.LevelWarn:  "warn",
		slog.LevelError: "error",
		LevelFatal:      "fatal",
	} {
		got := ReplaceAttrFn(nil, slog.Any(slog.LevelKey, level))
		assert.Equal(t, want, got.Value.String())
	}

	dropped := ReplaceAttrFnWithoutTimestamp(nil, slog.Time(slog.TimeKey, time.Now()))
	assert.True(t, dropped.Equal(slog.Attr{}))
}
