package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsAndOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, SetLevel("warn"))

	Infof("hidden %d", 1)
	assert.NotContains(t, buf.String(), "hidden")

	Warnf("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")

	require.NoError(t, SetLevel("DEBUG"))
	Debugf("debug line")
	assert.Contains(t, buf.String(), "debug line")

	assert.Error(t, SetLevel("loud"))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, SetLevel("info"))

	With("component", "renderer").Info("ready")
	assert.Contains(t, buf.String(), "component=renderer")
}
