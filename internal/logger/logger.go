package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

var (
	ErrLoggerInvalidLogLevel  = errors.New("invalid log level")
	ErrLoggerInvalidLogFormat = errors.New("invalid log format")
)

type options struct {
	w      io.Writer
	source bool
}

func WithWriter(w io.Writer) func(*options) {
	return func(o *options) {
		o.w = w
	}
}

func WithSource() func(*options) {
	return func(o *options) {
		o.source = true
	}
}

// NewLogger creates a logger for the format json, text or tint. Output goes to stdout unless
// a writer is given; the CLI logs to stderr so that command output stays parseable.
func NewLogger(logLevel, logFormat string, opts ...func(*options)) (*slog.Logger, error) {
	o := &options{w: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	slogLevel, err := getSlogLevel(logLevel)
	if err != nil {
		return nil, err
	}

	switch logFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(o.w, &slog.HandlerOptions{Level: slogLevel, AddSource: o.source})), nil
	case "text":
		return slog.New(slog.NewTextHandler(o.w, &slog.HandlerOptions{Level: slogLevel, AddSource: o.source})), nil
	case "tint":
		return slog.New(tint.NewHandler(o.w, &tint.Options{Level: slogLevel, AddSource: o.source})), nil
	}

	return nil, errors.Join(ErrLoggerInvalidLogFormat, fmt.Errorf("log format: %s", logFormat))
}

func getSlogLevel(logLevel string) (slog.Level, error) {
	switch strings.ToUpper(logLevel) {
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	}

	return slog.LevelInfo, errors.Join(ErrLoggerInvalidLogLevel, fmt.Errorf("log level: %s", logLevel))
}
