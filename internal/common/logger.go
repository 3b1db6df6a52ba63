package common

import (
	"log/slog"
	"os"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelNames = map[LogLevel]string{
	LogLevelError: "error",
	LogLevelWarn:  "warn",
	LogLevelInfo:  "info",
	LogLevelDebug: "debug",
}

var slogLevels = map[LogLevel]slog.Level{
	LogLevelError: slog.LevelError,
	LogLevelWarn:  slog.LevelWarn,
	LogLevelInfo:  slog.LevelInfo,
	LogLevelDebug: slog.LevelDebug,
}

// String returns the level name, defaulting to info for unknown values.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// ToSlogLevel converts LogLevel to slog.Level.
func (l LogLevel) ToSlogLevel() slog.Level {
	if lv, ok := slogLevels[l]; ok {
		return lv
	}
	return slog.LevelInfo
}

// ParseLogLevel maps a level name to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// Logger is the structured logger used across restload. Every log call
// routes its key/value attributes through the logger's masker.
type Logger struct {
	*slog.Logger
	level  LogLevel
	masker *Masker
}

func newLogger(handler slog.Handler, level LogLevel, masker *Masker) *Logger {
	return &Logger{
		Logger: slog.New(handler),
		level:  level,
		masker: masker,
	}
}

// NewLogger creates a new structured logger with the given level
func NewLogger(level LogLevel) *Logger {
	opts := &slog.HandlerOptions{Level: level.ToSlogLevel()}
	return newLogger(slog.NewTextHandler(os.Stdout, opts), level, NewMasker())
}

// NewJSONLogger creates a structured logger with JSON output
func NewJSONLogger(level LogLevel) *Logger {
	opts := &slog.HandlerOptions{Level: level.ToSlogLevel()}
	return newLogger(slog.NewJSONHandler(os.Stdout, opts), level, NewMasker())
}

// NewColorLogger creates a structured logger with colorized terminal
// output. The handler shares the logger's masker so one toggle controls
// both the attribute pass and the handler's own masking.
func NewColorLogger(level LogLevel) *Logger {
	opts := &slog.HandlerOptions{Level: level.ToSlogLevel()}
	masker := NewMasker()
	handler := NewColorHandler(os.Stdout, opts)
	handler.SetMasker(masker)
	return newLogger(handler, level, masker)
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// EnableMasking enables or disables masking on this logger
func (l *Logger) EnableMasking(enabled bool) {
	if l.masker != nil {
		l.masker.SetEnabled(enabled)
	}
}

// IsMaskingEnabled returns whether this logger masks sensitive values
func (l *Logger) IsMaskingEnabled() bool {
	return l.masker != nil && l.masker.IsEnabled()
}

// GetMasker returns the masker used by this logger
func (l *Logger) GetMasker() *Masker {
	return l.masker
}

// Info logs at info level with sensitive values masked
func (l *Logger) Info(msg string, keyvals ...any) {
	l.Logger.Info(msg, l.mask(keyvals)...)
}

// Warn logs at warn level with sensitive values masked
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.Logger.Warn(msg, l.mask(keyvals)...)
}

// Debug logs at debug level with sensitive values masked
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.Logger.Debug(msg, l.mask(keyvals)...)
}

// Error logs at error level with sensitive values masked
func (l *Logger) Error(msg string, keyvals ...any) {
	l.Logger.Error(msg, l.mask(keyvals)...)
}

func (l *Logger) mask(keyvals []any) []any {
	if l.masker == nil {
		return keyvals
	}
	return l.masker.MaskKeyValuePairs(keyvals...)
}

// derive returns a copy with extra context attributes, sharing the
// level and masker.
func (l *Logger) derive(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		level:  l.level,
		masker: l.masker,
	}
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return l.derive("component", component)
}

// WithTask returns a logger with task index context
func (l *Logger) WithTask(index int) *Logger {
	return l.derive("task", index)
}

// WithConfig returns a logger with API configuration context
func (l *Logger) WithConfig(configName string) *Logger {
	return l.derive("config", configName)
}

// WithStore returns a logger with store context
func (l *Logger) WithStore(storeType string) *Logger {
	return l.derive("store", storeType)
}

// WithRequest returns a logger with HTTP request context
func (l *Logger) WithRequest(method, url string) *Logger {
	return l.derive("method", method, "url", url)
}

// Global default logger instance
var defaultLogger = NewLogger(LogLevelInfo)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	return defaultLogger
}

// LogError logs an error with context
func LogError(msg string, err error, attrs ...any) {
	args := append([]any{"error", err}, attrs...)
	defaultLogger.Error(msg, args...)
}

// LogInfo logs informational message
func LogInfo(msg string, attrs ...any) {
	defaultLogger.Info(msg, attrs...)
}

// LogDebug logs debug message
func LogDebug(msg string, attrs ...any) {
	defaultLogger.Debug(msg, attrs...)
}

// LogWarn logs warning message
func LogWarn(msg string, attrs ...any) {
	defaultLogger.Warn(msg, attrs...)
}
