package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
}

// Fields represents log fields
type Fields map[string]interface{}

var (
	// Default is the default logger instance
	Default *Logger
)

// Init initializes the logger writing to stdout. environment is the
// HARVEST_ENVIRONMENT value; production logs at info unless LOG_LEVEL says otherwise.
func Init(environment string) {
	InitWithWriter(os.Stdout, environment)
}

// InitWithWriter initializes the default logger on the given writer.
func InitWithWriter(out io.Writer, environment string) {
	level := getLogLevel(environment)

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    out != os.Stdout,
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	Default = &Logger{logger: logger}

	Default.Debug().
		Str("level", level.String()).
		Str("environment", environment).
		Msg("Logger initialized")
}

// getLogLevel returns the level from LOG_LEVEL, falling back to the environment
func getLogLevel(environment string) zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if environment == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// ensure lazily initializes the default logger for code running before main
// has loaded the configuration, tests mostly.
func ensure() {
	if Default == nil {
		Init(os.Getenv("HARVEST_ENVIRONMENT"))
	}
}

// WithFields creates a new logger with fields
func (l *Logger) WithFields(fields Fields) *Logger {
	newLogger := l.logger.With()
	for k, v := range fields {
		newLogger = newLogger.Interface(k, v)
	}
	return &Logger{logger: newLogger.Logger()}
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Printf logs at info level. It lets the logger stand in wherever a
// Printf-style logger is expected (cron.PrintfLogger).
func (l *Logger) Printf(format string, v ...interface{}) {
	l.logger.Info().Msgf(format, v...)
}

// Global functions for backward compatibility

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	ensure()
	Default.Debug().Msgf(format, v...)
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	ensure()
	Default.Info().Msgf(format, v...)
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	ensure()
	Default.Warn().Msgf(format, v...)
}

// ForSource creates a logger for a specific listing source
func ForSource(source string) *Logger {
	ensure()
	return Default.WithField("source", source)
}

// ForStore creates a logger for the snapshot store
func ForStore(source string) *Logger {
	ensure()
	return Default.WithFields(Fields{"component": "store", "source": source})
}

// ForWorker creates a logger for the worker
func ForWorker() *Logger {
	ensure()
	return Default.WithField("component", "worker")
}

// ForPublisher creates a logger for the publisher
func ForPublisher() *Logger {
	ensure()
	return Default.WithField("component", "publisher")
}

// ForCache creates a logger for the cache
func ForCache() *Logger {
	ensure()
	return Default.WithField("component", "cache")
}
