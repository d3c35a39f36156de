// Package log provides the structured logger used throughout the VM,
// scheduler and capability authority: a small interface wrapping
// go.uber.org/zap, dependency-injected rather than held as a package-level
// global.
package log

import "go.uber.org/zap"

// Logger is the structured logging surface every runtime component takes
// as a constructor argument. Debug carries per-step VM detail, Info actor
// lifecycle and capability decisions, Warn denied/pending capability
// requests, Error terminal actor failures.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	// With returns a child logger that always includes fields, for tagging
	// every subsequent log line with e.g. an actor id or module name.
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	z *zap.Logger
}

// New wraps z as a Logger.
func New(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

// NewDevelopment returns a Logger backed by zap's development config
// (human-readable, debug level enabled) -- the default for local runs and
// tests.
func NewDevelopment() Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		z = zap.NewNop()
	}
	return New(z)
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

type noOpLogger struct{}

// NewNoOp returns a Logger that discards everything, for tests and for
// hosts that don't want runtime logging.
func NewNoOp() Logger {
	return noOpLogger{}
}

func (noOpLogger) Debug(string, ...zap.Field) {}
func (noOpLogger) Info(string, ...zap.Field)  {}
func (noOpLogger) Warn(string, ...zap.Field)  {}
func (noOpLogger) Error(string, ...zap.Field) {}
func (n noOpLogger) With(...zap.Field) Logger { return n }
