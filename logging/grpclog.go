package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/grpc/grpclog"
)

type grpcOptions struct {
	enabled   bool
	verbosity int
}

// grpcLogger adapts a slog logger to grpclog.LoggerV2.
type grpcLogger struct {
	logger    *slog.Logger
	verbosity int
}

var _ grpclog.LoggerV2 = (*grpcLogger)(nil)

func newGrpcLogger(verbosity int) *grpcLogger {
	return &grpcLogger{
		logger:    Named("grpc"),
		verbosity: verbosity,
	}
}

// installGrpcLogger must run before any gRPC function is used; grpclog does
// not guard the replacement.
func installGrpcLogger(verbosity int) {
	grpclog.SetLoggerV2(newGrpcLogger(verbosity))
}

func sprintln(args ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

func (l *grpcLogger) Info(args ...any) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *grpcLogger) Infoln(args ...any) {
	l.logger.Info(sprintln(args...))
}

func (l *grpcLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *grpcLogger) Warning(args ...any) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *grpcLogger) Warningln(args ...any) {
	l.logger.Warn(sprintln(args...))
}

func (l *grpcLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *grpcLogger) Error(args ...any) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *grpcLogger) Errorln(args ...any) {
	l.logger.Error(sprintln(args...))
}

func (l *grpcLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *grpcLogger) Fatal(args ...any) {
	Fatal(l.logger, fmt.Sprint(args...))
}

func (l *grpcLogger) Fatalln(args ...any) {
	Fatal(l.logger, sprintln(args...))
}

func (l *grpcLogger) Fatalf(format string, args ...any) {
	Fatal(l.logger, fmt.Sprintf(format, args...))
}

// V reports whether verbosity level l is enabled.
func (l *grpcLogger) V(level int) bool {
	return level <= l.verbosity
}
