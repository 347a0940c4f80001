package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name          string
		loglevel      string
		logformat     string
		enabled       slog.Level
		expectedError error
	}{
		{
			name:      "text logger",
			loglevel:  "INFO",
			logformat: "text",
			enabled:   slog.LevelInfo,
		},
		{
			name:      "json logger",
			loglevel:  "WARN",
			logformat: "json",
			enabled:   slog.LevelWarn,
		},
		{
			name:      "tint logger, lower case level",
			loglevel:  "debug",
			logformat: "tint",
			enabled:   slog.LevelDebug,
		},
		{
			name:          "invalid log format",
			loglevel:      "INFO",
			logformat:     "invalid format",
			expectedError: ErrLoggerInvalidLogFormat,
		},
		{
			name:          "invalid log level",
			loglevel:      "INVALID_LEVEL",
			logformat:     "text",
			expectedError: ErrLoggerInvalidLogLevel,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			buf := &bytes.Buffer{}

			// when
			sut, err := NewLogger(tc.loglevel, tc.logformat, WithWriter(buf))

			// then
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.True(t, sut.Enabled(context.Background(), tc.enabled))

			sut.Error("test")
			assert.Contains(t, buf.String(), "test")
		})
	}
}
