package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONToFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "bankbot.log")

	log, err := New(Options{Level: "debug", JSON: true, File: path})
	require.NoError(t, err)

	log.With(logrus.Fields{"session_id": "s1"}).Info("turn complete", logrus.Fields{"segments": 2})
	log.Debug("debug line")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "turn complete", entry["msg"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.EqualValues(t, 2, entry["segments"])
}

func TestLoggerEnvLevelOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	path := filepath.Join(t.TempDir(), "bankbot.log")

	log, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)
	log.Info("dropped")
	log.Error("kept")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}
