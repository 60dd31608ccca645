package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, err := New(Options{FilePath: path, Level: "debug"})
	require.NoError(t, err)

	l.Named("core.segment").Debug("segment requested", zap.String("region", "point(1,2)"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"message":"segment requested"`), line)
	assert.True(t, strings.Contains(line, `"logger":"core.segment"`), line)
	assert.True(t, strings.Contains(line, `"level":"DEBUG"`), line)
}

func TestLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(Options{FilePath: path, Level: "warn"})
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestNoOutputsIsNop(t *testing.T) {
	l, err := New(Options{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}
