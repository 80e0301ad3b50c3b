package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_NoPathDiscards(t *testing.T) {
	log, err := New("development", "debug", "")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.ErrorLevel))
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.log")
	log, err := New("production", "warn", path)
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("upload failed", zap.String("file", "a.png"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "upload failed", entry["msg"])
	assert.Equal(t, "a.png", entry["file"])
}

func TestNew_DevelopmentDefaultsToDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")
	log, err := New("development", "", path)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("production", "loud", filepath.Join(t.TempDir(), "x.log"))
	assert.Error(t, err)
}
