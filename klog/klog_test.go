package klog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDebugWritesFormattedMessage(t *testing.T) {
	var buf bytes.Buffer
	z := zerolog.New(&buf)
	SetOutput(&z)
	defer SetOutput(defaultLogger())

	Debug(LevelErr, "resource %d unreachable", 7)

	assert.Contains(t, buf.String(), "resource 7 unreachable")
}

func TestLevelMapping(t *testing.T) {
	assert.NotEqual(t, LevelDebug.logifaceLevel(), LevelErr.logifaceLevel())
	assert.NotEqual(t, LevelInfo.logifaceLevel(), LevelWarn.logifaceLevel())
}

func defaultLogger() *zerolog.Logger {
	z := zerolog.Nop()
	return &z
}
