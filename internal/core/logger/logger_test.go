package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelFallback(t *testing.T) {
	l, done := New(Options{Level: "nonsense"})
	defer done()

	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_RotateWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, done := New(Options{Level: "debug", JSON: true, Rotate: FileRotate{Enable: true, Filename: file}})
	l.Info("hello")
	done()

	assert.FileExists(t, file)
}

func TestToStdLogger(t *testing.T) {
	l, done := New(Options{Level: "info"})
	defer done()

	std := ToStdLogger(l, zapcore.WarnLevel)
	require.NotNil(t, std)
	std.Printf("from std %d", 1)
}
