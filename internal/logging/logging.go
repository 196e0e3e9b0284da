// Package logging provides the leveled logger used by the command line tool
// and the HTTP server.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level represents logging verbosity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps ERROR, WARN, INFO or DEBUG to a Level. Anything else is INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging on top of the standard logger.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a logger writing through the standard library's default logger.
func New(level Level) *Logger {
	return &Logger{level: level, out: log.Default()}
}

// NewWriter creates a logger writing to w, mainly for tests.
func NewWriter(level Level, w io.Writer) *Logger {
	return &Logger{level: level, out: log.New(w, "", 0)}
}

// Level returns the configured level.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) logf(level Level, prefix, format string, args ...any) {
	if l.level >= level {
		l.out.Printf(prefix+format, args...)
	}
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, "[ERROR] ", format, args...) }

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...any) { l.logf(LevelWarn, "[WARN] ", format, args...) }

// Info logs info messages.
func (l *Logger) Info(format string, args ...any) { l.logf(LevelInfo, "[INFO] ", format, args...) }

// Debug logs debug messages.
func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, "[DEBUG] ", format, args...) }

// Printf lets the logger be passed to library packages, which tag their
// messages with a "[LEVEL] " prefix. Untagged messages are logged at INFO.
func (l *Logger) Printf(format string, args ...any) {
	level := LevelInfo
	for _, tag := range []struct {
		prefix string
		level  Level
	}{
		{"[ERROR]", LevelError},
		{"[WARN]", LevelWarn},
		{"[INFO]", LevelInfo},
		{"[DEBUG]", LevelDebug},
	} {
		if strings.HasPrefix(format, tag.prefix) {
			level = tag.level
			break
		}
	}
	l.logf(level, "", format, args...)
}

// SetupLogging routes the standard logger to filename. With no filename the
// standard logger keeps writing to stderr. The returned cleanup closes the file.
func SetupLogging(filename string) (cleanup func(), err error) {
	log.SetFlags(log.LstdFlags)
	if filename == "" {
		log.SetOutput(os.Stderr)
		return func() {}, nil
	}

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cleanup = func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}
	return cleanup, nil
}
