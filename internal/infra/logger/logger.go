// Package logger builds the process-wide zap logger: a console core teed
// with combined.log and error.log file cores.
package logger

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "teampulse-turbo"

// slowThreshold marks operations that get logged at warn level.
const slowThreshold = 5 * time.Second

type Options struct {
	Level       string
	Dir         string
	Environment string
	Version     string
}

// Logger adds category helpers on top of *zap.Logger.
type Logger struct {
	*zap.Logger
}

// New builds the logger. An empty Dir disables the file cores.
func New(opts Options) (*Logger, error) {
	level := ParseLevel(opts.Level)
	production := opts.Environment == "production"

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleLevel := level
	consoleEncoder := zapcore.NewJSONEncoder(encCfg)
	if production {
		// file logs carry the detail, console only surfaces problems
		if consoleLevel < zapcore.WarnLevel {
			consoleLevel = zapcore.WarnLevel
		}
	} else {
		devCfg := encCfg
		devCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(devCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), consoleLevel),
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		combined, err := openLogFile(filepath.Join(opts.Dir, "combined.log"))
		if err != nil {
			return nil, err
		}
		errorsFile, err := openLogFile(filepath.Join(opts.Dir, "error.log"))
		if err != nil {
			return nil, err
		}
		fileEncoder := zapcore.NewJSONEncoder(encCfg)
		cores = append(cores,
			zapcore.NewCore(fileEncoder, combined, level),
			zapcore.NewCore(fileEncoder, errorsFile, zapcore.ErrorLevel),
		)
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(
			zap.String("service", serviceName),
			zap.String("version", opts.Version),
			zap.String("environment", opts.Environment),
		)
	return &Logger{Logger: z}, nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger { return &Logger{Logger: zap.NewNop()} }

// ParseLevel maps the configured level name to a zap level.
// "verbose" has no zap equivalent and is treated as debug.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return zapcore.ErrorLevel
	case "warn":
		return zapcore.WarnLevel
	case "debug", "verbose":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func openLogFile(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}

// HTTP logs a finished request.
func (l *Logger) HTTP(method, path string, status int, bytes int64, dur time.Duration, fields ...zap.Field) {
	fs := append([]zap.Field{
		zap.String("category", "http"),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Int64("bytes", bytes),
		zap.Duration("duration", dur),
	}, fields...)
	switch {
	case status >= 500:
		l.Error("request", fs...)
	case status >= 400:
		l.Warn("request", fs...)
	default:
		l.Info("request", fs...)
	}
}

// AI logs one call to the language model provider.
func (l *Logger) AI(provider, model, operation string, tokens int, dur time.Duration, err error) {
	fs := []zap.Field{
		zap.String("category", "ai"),
		zap.String("provider", provider),
		zap.String("model", model),
		zap.String("operation", operation),
		zap.Int("tokens", tokens),
		zap.Duration("duration", dur),
	}
	if err != nil {
		l.Error("ai call failed", append(fs, zap.Error(err))...)
		return
	}
	l.Info("ai call", fs...)
}

// Security logs auth and abuse related events.
func (l *Logger) Security(event string, fields ...zap.Field) {
	l.Warn(event, append([]zap.Field{zap.String("category", "security")}, fields...)...)
}

// Performance logs an operation duration, at warn level when it is slow.
func (l *Logger) Performance(operation string, dur time.Duration, fields ...zap.Field) {
	fs := append([]zap.Field{
		zap.String("category", "performance"),
		zap.String("operation", operation),
		zap.Duration("duration", dur),
	}, fields...)
	if dur > slowThreshold {
		l.Warn("slow operation", fs...)
		return
	}
	l.Debug("operation", fs...)
}
