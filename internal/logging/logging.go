// Package logging provides the process-wide leveled logger used by browserd.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.RWMutex
	disabled = false
	base     = zap.NewNop()
	logger   = base.Sugar()
)

// Init builds the global logger. Development mode uses a colored console
// encoder, otherwise JSON. Unknown levels fall back to info.
func Init(level string, development bool) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = zapcore.InfoLevel
		}
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Set(l)
	return nil
}

// Set replaces the global logger.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	logger = l.Sugar()
}

// L returns the underlying zap logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if disabled {
		return zap.NewNop()
	}
	return base
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Disable turns off all logging
func Disable() {
	mu.Lock()
	disabled = true
	mu.Unlock()
}

// Enable turns logging back on
func Enable() {
	mu.Lock()
	disabled = false
	mu.Unlock()
}

func sugar() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if disabled {
		return nil
	}
	return logger
}

// Info logs an info message
func Info(v ...any) {
	if s := sugar(); s != nil {
		s.Info(v...)
	}
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	if s := sugar(); s != nil {
		s.Infof(format, v...)
	}
}

// Error logs an error message
func Error(v ...any) {
	if s := sugar(); s != nil {
		s.Error(v...)
	}
}

// Errorf logs a formatted error message
func Errorf(format string, v ...any) {
	if s := sugar(); s != nil {
		s.Errorf(format, v...)
	}
}

// Warn logs a warning message
func Warn(v ...any) {
	if s := sugar(); s != nil {
		s.Warn(v...)
	}
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	if s := sugar(); s != nil {
		s.Warnf(format, v...)
	}
}

// Debug logs a debug message
func Debug(v ...any) {
	if s := sugar(); s != nil {
		s.Debug(v...)
	}
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) {
	if s := sugar(); s != nil {
		s.Debugf(format, v...)
	}
}

// With returns a structured logger carrying the given key/value pairs.
func With(kv ...any) *zap.SugaredLogger {
	if s := sugar(); s != nil {
		return s.With(kv...)
	}
	return zap.NewNop().Sugar()
}
