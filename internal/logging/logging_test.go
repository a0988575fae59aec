package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	require.NotNil(t, Logger)
	Named("test").Infow("no-op", "k", "v")
}

func TestInitialize(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	require.NoError(t, Initialize("json", "debug"))
	assert.True(t, Logger.Desugar().Core().Enabled(-1))

	require.NoError(t, Initialize("console", ""))
	assert.False(t, Logger.Desugar().Core().Enabled(-1))

	assert.Error(t, Initialize("xml", "info"))
	assert.Error(t, Initialize("json", "loud"))
}
