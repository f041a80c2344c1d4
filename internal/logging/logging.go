package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus with file rotation. Output goes to both the rotated
// file and stdout.
type Logger struct {
	log *logrus.Logger
}

// New builds a Logger writing to dir/crowd-safety.log at the given level.
// An unknown level falls back to info.
func New(dir, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "crowd-safety.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 7,
		MaxAge:     28, // days
		Compress:   true,
	}

	log := logrus.New()
	log.SetOutput(io.MultiWriter(rotator, os.Stdout))
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return &Logger{log: log}, nil
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{log: log}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

// WithField returns a structured entry for call sites that want key=value
// context instead of a formatted line.
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.log.WithField(key, value)
}
