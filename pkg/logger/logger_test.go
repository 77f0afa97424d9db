package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	log, err := New(Config{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("Dataset downloaded")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Dataset downloaded", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_ConsoleFileHasNoColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")

	log, err := New(Config{Level: "debug", Format: "console", OutputPath: path})
	require.NoError(t, err)

	log.Warn("Nothing new")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WARN")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.log")

	log, err := New(Config{Level: "chatty", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewDefault(t *testing.T) {
	assert.NotNil(t, NewDefault())
}

func TestNew_EventsDirTeesJSON(t *testing.T) {
	dir := t.TempDir()
	consolePath := filepath.Join(dir, "console.log")
	eventsDir := filepath.Join(dir, "events")

	log, err := New(Config{Level: "info", Format: "console", OutputPath: consolePath, EventsDir: eventsDir})
	require.NoError(t, err)

	log.Info("Recorded in download log", zap.String("dataset", "a/one"))
	require.NoError(t, log.Sync())

	console, err := os.ReadFile(consolePath)
	require.NoError(t, err)
	assert.Contains(t, string(console), "Recorded in download log")

	data, err := os.ReadFile(EventsPath(eventsDir, time.Now()))
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "Recorded in download log", entry["msg"])
	assert.Equal(t, "a/one", entry["dataset"])
	assert.Contains(t, entry, "ts")
}
