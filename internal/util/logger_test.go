package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerWithoutInitIsUsable(t *testing.T) {
	logger = nil
	l := GetLogger()
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Info("noop") })
	assert.Same(t, l, GetLogger())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger("production"))
	require.NotNil(t, logger)

	require.NoError(t, InitLogger("development"))
	require.NotNil(t, logger)
	SyncLogger()
}
