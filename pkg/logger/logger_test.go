package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/architeacher/items/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		level       string
		expectDebug bool
	}{
		{
			name:        "debug level emits debug entries",
			level:       logger.LogLevelDebug,
			expectDebug: true,
		},
		{
			name:        "info level suppresses debug entries",
			level:       logger.LogLevelInfo,
			expectDebug: false,
		},
		{
			name:        "unknown level falls back to info",
			level:       "verbose",
			expectDebug: false,
		},
		{
			name:        "level parsing ignores case",
			level:       "DEBUG",
			expectDebug: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := logger.NewWithWriter(tc.level, logger.JSONLoggingFormat, &buf)

			log.Debug().Msg("probe")

			require.Equal(t, tc.expectDebug, buf.Len() > 0)
		})
	}
}

func TestWithContext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                  string
		setupContext          func() context.Context
		expectedRequestID     any
		expectedCorrelationID any
	}{
		{
			name: "adds request id",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), logger.ContextKeyRequestID, "req-123")
			},
			expectedRequestID: "req-123",
		},
		{
			name: "adds correlation id",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), logger.ContextKeyCorrelationID, "corr-9")
			},
			expectedCorrelationID: "corr-9",
		},
		{
			name: "skips empty request id",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), logger.ContextKeyRequestID, "")
			},
		},
		{
			name:         "handles bare context",
			setupContext: context.Background,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := logger.NewWithWriter(logger.LogLevelInfo, logger.JSONLoggingFormat, &buf)

			ctxLogger := log.WithContext(tc.setupContext())
			ctxLogger.Info().Msg("test message")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			require.Equal(t, tc.expectedRequestID, entry["request_id"])
			require.Equal(t, tc.expectedCorrelationID, entry["correlation_id"])
		})
	}
}

func TestComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.LogLevelInfo, logger.JSONLoggingFormat, &buf).Component("cache")

	log.Info().Msg("connected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "cache", entry["component"])
	require.Equal(t, "connected", entry["message"])
}

func TestWithContextChainsLevelEvents(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.LogLevelInfo, logger.JSONLoggingFormat, &buf)
	ctx := context.WithValue(context.Background(), logger.ContextKeyRequestID, "req-7")

	log.WithContext(ctx).Warn().Str("key", "item:1").Msg("cache entry dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "req-7", entry["request_id"])
	require.Equal(t, "item:1", entry["key"])
}
