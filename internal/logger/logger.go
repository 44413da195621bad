package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures a Logger.
type Options struct {
	Level string
	JSON  bool
	// File receives log output; "stderr" or empty writes to standard error.
	File string
}

// Logger wraps a logrus entry so callers can attach fields once and reuse them.
type Logger struct {
	entry *logrus.Entry
	out   io.Closer
}

// New initializes a Logger. LOG_LEVEL, when set, overrides opts.Level.
func New(opts Options) (*Logger, error) {
	logger := logrus.New()

	var closer io.Closer
	switch opts.File {
	case "", "stderr":
		logger.Out = os.Stderr
	default:
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		logger.Out = f
		closer = f
	}

	logLevel := opts.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		logLevel = env
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			PrettyPrint: false,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			PadLevelText:  true,
		})
	}

	return &Logger{entry: logrus.NewEntry(logger), out: closer}, nil
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() *Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return &Logger{entry: logrus.NewEntry(logger)}
}

// With returns a child Logger carrying the given fields on every entry.
func (l *Logger) With(fields logrus.Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// Debug logs a debug-level message.
func (l *Logger) Debug(msg string, fields ...logrus.Fields) {
	l.logWithFields(logrus.DebugLevel, msg, fields...)
}

// Info logs an info-level message.
func (l *Logger) Info(msg string, fields ...logrus.Fields) {
	l.logWithFields(logrus.InfoLevel, msg, fields...)
}

// Warn logs a warn-level message.
func (l *Logger) Warn(msg string, fields ...logrus.Fields) {
	l.logWithFields(logrus.WarnLevel, msg, fields...)
}

// Error logs an error-level message.
func (l *Logger) Error(msg string, fields ...logrus.Fields) {
	l.logWithFields(logrus.ErrorLevel, msg, fields...)
}

// Fatal logs a fatal-level message and exits the application.
func (l *Logger) Fatal(msg string, fields ...logrus.Fields) {
	l.logWithFields(logrus.FatalLevel, msg, fields...)
	l.Close()
	os.Exit(1)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.out == nil {
		return nil
	}
	return l.out.Close()
}

func (l *Logger) logWithFields(level logrus.Level, msg string, fields ...logrus.Fields) {
	entry := l.entry
	for _, field := range fields {
		entry = entry.WithFields(field)
	}
	entry.Log(level, msg)
}
