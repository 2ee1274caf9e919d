package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/correlationid"
)

func TestEnrichedHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.Log{Format: config.LogFormatJSON, Level: slog.LevelDebug}))

	t.Run("Should add correlation id from context", func(t *testing.T) {
		buf.Reset()
		ctx := correlationid.NewContext(context.Background(), "abc-123")

		logger.With(slog.String("service", "store")).InfoContext(ctx, "record added")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "abc-123", line["correlation_id"])
		assert.Equal(t, "store", line["service"])
		assert.NotContains(t, line, "trace_id")
	})

	t.Run("Should skip correlation id when absent", func(t *testing.T) {
		buf.Reset()

		logger.InfoContext(context.Background(), "hello")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.NotContains(t, line, "correlation_id")
	})

	t.Run("Should respect level", func(t *testing.T) {
		buf.Reset()
		quiet := slog.New(newHandler(&buf, config.Log{Format: config.LogFormatText, Level: slog.LevelWarn}))

		quiet.Info("dropped")
		assert.Empty(t, buf.String())

		quiet.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})
}
