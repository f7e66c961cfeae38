package app

import (
	"testing"

	"github.com/Freeeeeet/streamer_booking/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	prod, err := NewLogger(&config.Config{Environment: "production"}, "api")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, prod.Core().Enabled(zapcore.InfoLevel))

	dev, err := NewLogger(&config.Config{Environment: "development"}, "api")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerLevelOverride(t *testing.T) {
	quiet, err := NewLogger(&config.Config{Environment: "development", LogLevel: "warn"}, "maintenance")
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger(&config.Config{Environment: "production", LogLevel: "loud"}, "api")
	assert.ErrorContains(t, err, "LOG_LEVEL")
}
