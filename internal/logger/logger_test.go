package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" WARNING "))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"production", "development"} {
		l, err := New(mode, "WARN")
		require.NoError(t, err)
		assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel), mode)
		assert.True(t, l.SugaredLogger.Desugar().Core().Enabled(zapcore.ErrorLevel), mode)
	}

	assert.NotPanics(t, func() { NewNop().With("k", "v").Info("dropped") })
}
