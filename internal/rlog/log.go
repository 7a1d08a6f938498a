// Package rlog provides the process-wide structured logger used across
// reflex's indexing and query paths.
package rlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLogFormat = "REFLEX_LOG_FORMAT"
	envLogLevel  = "REFLEX_LOG_LEVEL"
)

var (
	globalMu     sync.Mutex
	globalLogger *zap.Logger
)

// L returns the process-wide logger, initializing it with environment
// defaults on first use.
func L() *zap.Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = newLogger()
	}
	return globalLogger
}

// SetForTest installs a logger for the duration of a test and returns a
// restore function.
func SetForTest(l *zap.Logger) (restore func()) {
	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()
	return func() {
		globalMu.Lock()
		globalLogger = prev
		globalMu.Unlock()
	}
}

func newLogger() *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(os.Getenv(envLogLevel))); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	development := os.Getenv(envLogFormat) == "console"

	var encoder zapcore.Encoder
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if development {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	} else {
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)

	opts := []zap.Option{zap.AddCaller()}
	if development {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...)
}
