// Package logging provides global logging functions for chatextract.
// Use dot import to access L_info, L_error, etc. directly.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log levels
const (
	LevelFatal = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var (
	logger *log.Logger
	once   sync.Once
)

// Config holds logging configuration
type Config struct {
	Level      int
	TimeFormat string
	ShowCaller bool
	Output     io.Writer // nil = stderr
}

// DefaultConfig returns the quiet CLI defaults: warnings and errors only.
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelWarn,
		TimeFormat: "15:04:05",
		ShowCaller: false,
	}
}

// VerboseConfig returns the config used for --verbose: timestamped progress
// logging down to debug level.
func VerboseConfig() *Config {
	cfg := DefaultConfig()
	cfg.Level = LevelDebug
	return cfg
}

// Init initializes the global logger. Safe to call multiple times; only the
// first call wins.
func Init(cfg *Config) {
	once.Do(func() {
		if cfg == nil {
			cfg = DefaultConfig()
		}
		if cfg.TimeFormat == "" {
			cfg.TimeFormat = "15:04:05"
		}
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}

		logger = log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			TimeFormat:      cfg.TimeFormat,
			ReportCaller:    cfg.ShowCaller,
			CallerOffset:    2, // Skip two frames (logMsg -> L_* -> caller)
		})
		logger.SetLevel(toCharmLevel(cfg.Level))
	})
}

func toCharmLevel(level int) log.Level {
	switch level {
	case LevelTrace, LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

// ensureInit ensures logger is initialized with defaults if not already
func ensureInit() {
	if logger == nil {
		Init(nil)
	}
}

// logMsg writes msg with structured key/value pairs:
// logMsg(level, "loaded", "key", val, ...)
func logMsg(level log.Level, msg string, keyvals ...interface{}) {
	ensureInit()

	switch level {
	case log.DebugLevel:
		logger.Debug(msg, keyvals...)
	case log.InfoLevel:
		logger.Info(msg, keyvals...)
	case log.WarnLevel:
		logger.Warn(msg, keyvals...)
	case log.ErrorLevel:
		logger.Error(msg, keyvals...)
	case log.FatalLevel:
		logger.Fatal(msg, keyvals...)
	}
}

// L_trace logs at trace level (mapped to debug)
func L_trace(msg string, keyvals ...interface{}) {
	logMsg(log.DebugLevel, msg, keyvals...)
}

// L_debug logs at debug level
func L_debug(msg string, keyvals ...interface{}) {
	logMsg(log.DebugLevel, msg, keyvals...)
}

// L_info logs at info level
func L_info(msg string, keyvals ...interface{}) {
	logMsg(log.InfoLevel, msg, keyvals...)
}

// L_warn logs at warn level
func L_warn(msg string, keyvals ...interface{}) {
	logMsg(log.WarnLevel, msg, keyvals...)
}

// L_error logs at error level
func L_error(msg string, keyvals ...interface{}) {
	logMsg(log.ErrorLevel, msg, keyvals...)
}

// L_fatal logs at fatal level and exits
func L_fatal(msg string, keyvals ...interface{}) {
	logMsg(log.FatalLevel, msg, keyvals...)
}

// Printf-style variants

func L_debugf(format string, args ...interface{}) {
	logMsg(log.DebugLevel, fmt.Sprintf(format, args...))
}

func L_infof(format string, args ...interface{}) {
	logMsg(log.InfoLevel, fmt.Sprintf(format, args...))
}

func L_warnf(format string, args ...interface{}) {
	logMsg(log.WarnLevel, fmt.Sprintf(format, args...))
}

func L_errorf(format string, args ...interface{}) {
	logMsg(log.ErrorLevel, fmt.Sprintf(format, args...))
}

// SetLevel changes the log level at runtime
func SetLevel(level int) {
	ensureInit()
	logger.SetLevel(toCharmLevel(level))
}

// L_elapsed logs at info level with the elapsed time since start appended
func L_elapsed(start time.Time, msg string, keyvals ...interface{}) {
	keyvals = append(keyvals, "elapsed", time.Since(start).Round(time.Millisecond).String())
	logMsg(log.InfoLevel, msg, keyvals...)
}

// SetOutput redirects log output at runtime
func SetOutput(w io.Writer) {
	ensureInit()
	logger.SetOutput(w)
}
