// Package logger is PinPoint's structured logging facade over zap.
//
// One process-wide logger behind an AtomicLevel, so the level can be
// raised or lowered at runtime without rebuilding the logger. JSON output
// for production, console for development.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	level  zap.AtomicLevel
	once   sync.Once
)

// Init builds the global logger. Levels are debug, info, warn, error;
// format is json or console. Subsequent calls are no-ops.
func Init(levelName, format string) error {
	var initErr error
	once.Do(func() {
		global, initErr = build(levelName, format)
	})
	return initErr
}

func build(levelName, format string) (*zap.Logger, error) {
	level = zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", levelName, err)
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = level

	return cfg.Build(zap.AddCallerSkip(1))
}

// SetLevel changes the log level at runtime.
func SetLevel(name string) error {
	return level.UnmarshalText([]byte(name))
}

// GetLevel returns the current log level.
func GetLevel() zapcore.Level {
	return level.Level()
}

// L returns the global logger. Panics if Init has not been called.
func L() *zap.Logger {
	if global == nil {
		panic("logger.Init() must be called before logger.L()")
	}
	return global
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	return L().Sugar()
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Sync flushes buffered entries. Safe before Init.
func Sync() error {
	if global == nil {
		return nil
	}
	return global.Sync()
}
