package lib

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarningLevel
	ErrorLevel
)

var levelNames = map[string]Level{
	"debug":   DebugLevel,
	"info":    InfoLevel,
	"warn":    WarningLevel,
	"warning": WarningLevel,
	"error":   ErrorLevel,
}

// ParseLevel converts a level name (debug, info, warn, error) into a Level.
func ParseLevel(name string) (Level, error) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// Logger is the logging interface used by connections.
type Logger interface {
	Debug(...any)
	Debugf(string, ...any)
	Info(...any)
	Infof(string, ...any)
	Warn(...any)
	Warnf(string, ...any)
	Error(...any)
	Errorf(string, ...any)
	// With returns a logger that adds the given key/value pairs to every entry.
	With(keyValues ...any) Logger
}

// DiscardLogger drops everything.
var DiscardLogger Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Debug(...any)          {}
func (discardLogger) Debugf(string, ...any) {}
func (discardLogger) Info(...any)           {}
func (discardLogger) Infof(string, ...any)  {}
func (discardLogger) Warn(...any)           {}
func (discardLogger) Warnf(string, ...any)  {}
func (discardLogger) Error(...any)          {}
func (discardLogger) Errorf(string, ...any) {}
func (discardLogger) With(...any) Logger    { return DiscardLogger }

// Zap implements Logger with zap as the underlying logging library.
type Zap struct {
	sugar *zap.SugaredLogger
}

var _ Logger = &Zap{}

// NewZap creates a JSON logger writing to the given writers (stdout if none).
func NewZap(level Level, writers ...io.Writer) *Zap {
	return newZap(zapcore.NewJSONEncoder(encoderConfig()), level, writers...)
}

// NewConsoleZap creates a human readable logger. Levels are colored, so the
// writers should be terminals.
func NewConsoleZap(level Level, writers ...io.Writer) *Zap {
	config := encoderConfig()
	config.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return newZap(zapcore.NewConsoleEncoder(config), level, writers...)
}

func newZap(encoder zapcore.Encoder, level Level, writers ...io.Writer) *Zap {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}
	core := zapcore.NewCore(encoder, zap.CombineWriteSyncers(syncers...), toZapLevel(level))
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Zap{sugar: logger.Sugar()}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02T15:04:05.000000Z0700"))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

func (z *Zap) Debug(v ...any)                 { z.sugar.Debug(v...) }
func (z *Zap) Debugf(format string, v ...any) { z.sugar.Debugf(format, v...) }
func (z *Zap) Info(v ...any)                  { z.sugar.Info(v...) }
func (z *Zap) Infof(format string, v ...any)  { z.sugar.Infof(format, v...) }
func (z *Zap) Warn(v ...any)                  { z.sugar.Warn(v...) }
func (z *Zap) Warnf(format string, v ...any)  { z.sugar.Warnf(format, v...) }
func (z *Zap) Error(v ...any)                 { z.sugar.Error(v...) }
func (z *Zap) Errorf(format string, v ...any) { z.sugar.Errorf(format, v...) }

// With returns a child logger carrying the given fields.
func (z *Zap) With(keyValues ...any) Logger {
	return &Zap{sugar: z.sugar.With(keyValues...)}
}

// Sync flushes buffered entries.
func (z *Zap) Sync() error {
	return z.sugar.Sync()
}

var (
	trace       atomic.Bool
	traceLogger atomic.Pointer[Zap]
)

func init() {
	traceLogger.Store(NewConsoleZap(DebugLevel, os.Stderr))
}

// SetTrace enables or disables Log output.
func SetTrace(enabled bool) {
	trace.Store(enabled)
}

// SetTraceLogger replaces the logger Log writes to, stderr by default.
// nil restores the default.
func SetTraceLogger(z *Zap) {
	if z == nil {
		z = NewConsoleZap(DebugLevel, os.Stderr)
	}
	traceLogger.Store(z)
}

// Log writes protocol trace lines at debug level if tracing is enabled.
func Log(f string, a ...any) {
	if trace.Load() {
		traceLogger.Load().sugar.Debugf(f, a...)
	}
}
