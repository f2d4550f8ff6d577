package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the field-map logging surface that tool handlers, workers and
// the catalog depend on. Implementations are backed by zap.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
	With(fields map[string]interface{}) Logger
}

const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// New builds a zap logger. output is "stdout", "stderr" or a file path; the
// stdio MCP server must use stderr since stdout carries the protocol.
func New(levelStr, format, output string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(levelStr))

	if output == "" {
		output = OutputStderr
	}
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{OutputStderr}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// ParseLevel maps a config level name to a zap level. Unknown names are info.
func ParseLevel(levelStr string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(levelStr)); err != nil {
		return zapcore.InfoLevel
	}
	switch lvl {
	case zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel:
		return lvl
	}
	return zapcore.InfoLevel
}

type fieldLogger struct {
	z *zap.Logger
}

// NewZapAdapter exposes an existing *zap.Logger as a Logger.
func NewZapAdapter(l *zap.Logger) Logger {
	return fieldLogger{z: l}
}

// NewTestLogger routes output through t.Log.
func NewTestLogger(t testing.TB) Logger {
	return fieldLogger{z: zaptest.NewLogger(t)}
}

func NewNoOpLogger() Logger {
	return fieldLogger{z: zap.NewNop()}
}

func (f fieldLogger) Debug(msg string, fields map[string]interface{}) {
	f.write(zapcore.DebugLevel, msg, fields)
}

func (f fieldLogger) Info(msg string, fields map[string]interface{}) {
	f.write(zapcore.InfoLevel, msg, fields)
}

func (f fieldLogger) Warn(msg string, fields map[string]interface{}) {
	f.write(zapcore.WarnLevel, msg, fields)
}

func (f fieldLogger) Error(msg string, fields map[string]interface{}) {
	f.write(zapcore.ErrorLevel, msg, fields)
}

func (f fieldLogger) WithFields(fields map[string]interface{}) Logger {
	return fieldLogger{z: f.z.With(toZap(fields)...)}
}

func (f fieldLogger) With(fields map[string]interface{}) Logger {
	return f.WithFields(fields)
}

func (f fieldLogger) WithError(err error) Logger {
	return fieldLogger{z: f.z.With(zap.Error(err))}
}

func (f fieldLogger) write(lvl zapcore.Level, msg string, fields map[string]interface{}) {
	if ce := f.z.Check(lvl, msg); ce != nil {
		ce.Write(toZap(fields)...)
	}
}

// toZap keeps errors as error fields so they render as strings.
func toZap(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
