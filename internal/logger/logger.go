package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Options selects the level and the optional rotating log file.
type Options struct {
	Level      string
	File       string // empty means console only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. The first call builds it from opts;
// later calls ignore opts and return the same instance.
func Get(opts Options) *Logger {
	once.Do(func() {
		globalLogger = New(opts)
	})
	return globalLogger
}
