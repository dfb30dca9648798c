package helpers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"sjsage522/contestharvester/logger"
)

// FailureLogger records failed harvests so they can be diagnosed without re-running
type FailureLogger interface {
	LogError(source string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger appends failures to a plain-text file and mirrors them to the
// structured logger.
type Logger struct {
	mu        sync.Mutex
	errorFile string
}

// NewLogger creates a new logger instance
func NewLogger(errorFile string) *Logger {
	return &Logger{
		errorFile: errorFile,
	}
}

// LogError logs an error to a file with source name and timestamp
func (l *Logger) LogError(source string, err error) {
	logger.ForSource(source).Error().Err(err).Msg("Harvest failed")

	if l.errorFile == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.Warn("failed to open error log %s: %v", l.errorFile, fileErr)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, source, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.Info(format, args...)
}
