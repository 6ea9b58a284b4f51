package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	observability.Setup(&buf, "info")
	t.Cleanup(func() { observability.Setup(&bytes.Buffer{}, "info") })

	ctx := observability.WithRequestID(context.Background(), "req-123")
	observability.LoggerFromContext(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestSetupHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	observability.Setup(&buf, "warn")
	t.Cleanup(func() { observability.Setup(&bytes.Buffer{}, "info") })

	observability.Logger().Info("dropped")
	assert.Zero(t, buf.Len())

	observability.Logger().Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, observability.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, observability.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, observability.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, observability.ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, observability.ParseLevel("verbose"))
}

func TestWithFieldsKeepsRequestID(t *testing.T) {
	var buf bytes.Buffer
	observability.Setup(&buf, "info")
	t.Cleanup(func() { observability.Setup(&bytes.Buffer{}, "info") })

	ctx := observability.WithRequestID(context.Background(), "req-456")
	observability.WithFields(ctx, "topic", "fermi").Info("sent")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-456", entry["request_id"])
	assert.Equal(t, "fermi", entry["topic"])
}
