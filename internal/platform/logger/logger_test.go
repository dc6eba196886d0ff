package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/charforge-api/internal/config"
)

func TestSetupEmitsJSONAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	log := setup(config.ServerConfig{LogLevel: "warn"}, &buf)

	log.Info("suppressed")
	log.Warn("kept", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := setup(config.ServerConfig{LogLevel: "loud"}, &buf)

	log.Debug("suppressed")
	log.Info("kept")

	assert.Contains(t, buf.String(), "kept")
	assert.NotContains(t, buf.String(), "suppressed")
}

func TestFromContextRoundTrip(t *testing.T) {
	log := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	ctx := WithLogger(context.Background(), log)

	assert.Same(t, log, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
