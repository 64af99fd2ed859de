package fixer

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger is the logging interface used by the pipeline.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// logrusLogger writes through logrus. Every entry carries the run id so
// interleaved runs in one log can be told apart.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogger returns a Logger writing text entries to w. Debug entries are
// written only when debug is set; otherwise the level is warn.
func NewLogger(w io.Writer, debug bool) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})

	l.SetLevel(logrus.WarnLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}

	return &logrusLogger{entry: l.WithField("run", uuid.NewString()[:8])}
}

func (l *logrusLogger) Debug(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

func (l *logrusLogger) Info(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *logrusLogger) Warn(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

func (l *logrusLogger) Error(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
