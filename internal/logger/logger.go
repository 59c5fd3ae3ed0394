// Package logger wraps logrus with the settings cemigrate uses.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is a wrapper around logrus.Logger
type Logger struct {
	*logrus.Logger
}

// New creates a logger writing to stdout with the given level and format
// ("text" or "json").
func New(level, format string) *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	l := &Logger{Logger: log}
	l.SetFormat(format)
	l.SetLevel(level)
	return l
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	l := New("error", "text")
	l.SetOutput(io.Discard)
	return l
}

var levels = map[string]logrus.Level{
	"debug":   logrus.DebugLevel,
	"info":    logrus.InfoLevel,
	"warn":    logrus.WarnLevel,
	"warning": logrus.WarnLevel,
	"error":   logrus.ErrorLevel,
}

// ValidLevel reports whether SetLevel understands level.
func ValidLevel(level string) bool {
	_, ok := levels[strings.ToLower(level)]
	return ok
}

// SetLevel sets the logging level; unknown levels fall back to info
func (l *Logger) SetLevel(level string) {
	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		lvl = logrus.InfoLevel
	}
	l.Logger.SetLevel(lvl)
}

// SetFormat switches between the text and JSON formatters
func (l *Logger) SetFormat(format string) {
	if strings.EqualFold(format, "json") {
		l.Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		return
	}
	l.Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}
