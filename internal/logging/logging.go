package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Error(msg string, kv ...any)
	Fatal(msg string, kv ...any)
}

// shared so SetLevel affects every logger created by New
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// ZapLogger implements Logger on top of a sugared zap logger.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// New creates a logger; honors env vars LOG_LEVEL (debug|info|error|fatal), LOG_JSON (true|false).
func New(env string) Logger {
	lvl := os.Getenv("LOG_LEVEL")
	if lvl == "" {
		lvl = "info"
	}
	SetLevel(lvl)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if os.Getenv("LOG_JSON") == "false" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	return NewWithCore(core).With("env", env)
}

// NewWithCore wraps an arbitrary zap core, e.g. zaptest/observer in tests.
func NewWithCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{s: zap.New(core).Sugar()}
}

// With returns a child logger that always carries the given key/value pairs.
func (l *ZapLogger) With(kv ...any) *ZapLogger {
	return &ZapLogger{s: l.s.With(kv...)}
}

// SetLevel changes the global level; unknown values fall back to info.
func SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

func GetLevel() string { return level.Level().String() }

func (l *ZapLogger) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *ZapLogger) Info(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *ZapLogger) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
func (l *ZapLogger) Fatal(msg string, kv ...any) { l.s.Fatalw(msg, kv...) }

// Sync flushes buffered entries; call before the process exits.
func (l *ZapLogger) Sync() error { return l.s.Sync() }

// Nop discards everything.
func Nop() Logger { return &ZapLogger{s: zap.NewNop().Sugar()} }
