// Package logging is the zap-based logging layer of spinbench.
//
// The default logger writes to stderr at the level named by the
// SPINBENCH_LOGGING_LEVEL environment variable (debug, info, warn, error;
// info when unset). CreateLoggerAsLocalFile builds a logger that writes
// through a rotating file instead.
package logging

import (
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the alias of zapcore.Level.
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

const envLoggingLevel = "SPINBENCH_LOGGING_LEVEL"

var (
	mu                  sync.RWMutex
	defaultLogger       *zap.Logger
	defaultLoggingLevel Level
	flushLogs           func() error
)

func init() {
	defaultLoggingLevel = InfoLevel
	if lvl := os.Getenv(envLoggingLevel); len(lvl) > 0 {
		if l, err := ParseLevel(lvl); err == nil {
			defaultLoggingLevel = l
		}
	}

	defaultLogger = NewConsoleLogger(defaultLoggingLevel)
	flushLogs = defaultLogger.Sync
}

// ParseLevel turns "debug", "INFO", ... into a Level.
func ParseLevel(s string) (Level, error) {
	var l Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return InfoLevel, err
	}
	return l, nil
}

// NewConsoleLogger builds a human-readable logger writing to stderr.
func NewConsoleLogger(level Level) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core, zap.AddCaller())
}

// CreateLoggerAsLocalFile sets up a logger writing JSON lines to
// localFilePath, rotated at 100MB with two backups kept for 15 days.
func CreateLoggerAsLocalFile(localFilePath string, logLevel Level) (logger *zap.Logger, flush func() error, err error) {
	if len(localFilePath) == 0 {
		return nil, nil, errors.New("invalid local logger path")
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   localFilePath,
		MaxSize:    100, // megabytes
		MaxBackups: 2,
		MaxAge:     15, // days
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(lumberJackLogger),
		zap.NewAtomicLevelAt(logLevel),
	)

	logger = zap.New(core, zap.AddCaller())
	flush = func() error {
		_ = logger.Sync()
		return lumberJackLogger.Close()
	}
	return logger, flush, nil
}

// GetDefaultLogger returns the default structured logger.
func GetDefaultLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// GetDefaultFlusher returns the flush function of the default logger.
func GetDefaultFlusher() func() error {
	mu.RLock()
	defer mu.RUnlock()
	return flushLogs
}

// SetDefaultLoggerAndFlusher replaces the default logger and its flusher.
func SetDefaultLoggerAndFlusher(logger *zap.Logger, flusher func() error) {
	mu.Lock()
	defaultLogger, flushLogs = logger, flusher
	mu.Unlock()
}

// LogLevel returns the level the default logger was created with.
func LogLevel() string {
	return defaultLoggingLevel.String()
}

// Cleanup flushes the default logger.
func Cleanup() {
	if flush := GetDefaultFlusher(); flush != nil {
		_ = flush()
	}
}
