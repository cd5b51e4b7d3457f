package logging

import (
	"testing"

	"github.com/agentdouble/kpix/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New(config.LoggerConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = New(config.LoggerConfig{Level: "console", Format: "console"})
	assert.Error(t, err)
}
