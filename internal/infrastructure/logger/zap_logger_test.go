package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voices.log")
	var console bytes.Buffer

	l, err := NewZapLogger(Options{File: path, Level: "info", Console: &console})
	require.NoError(t, err)

	l.Info("session", "submission finished", map[string]interface{}{"kind": "transport_failure"})
	l.Debug("session", "below level", nil)
	require.NoError(t, l.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}

	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "submission finished", entries[0]["message"])
	assert.Equal(t, "session", entries[0]["module"])
	details, ok := entries[0]["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "transport_failure", details["kind"])

	assert.Contains(t, console.String(), "submission finished")
	assert.NotContains(t, console.String(), "below level")
}

func TestZapLogger_DebugLevel(t *testing.T) {
	var console bytes.Buffer

	l, err := NewZapLogger(Options{Level: "debug", Console: &console})
	require.NoError(t, err)

	l.Debug("gateway", "request sent", nil)
	_ = l.Sync()

	assert.Contains(t, console.String(), "request sent")
}

func TestZapLogger_InvalidLevel(t *testing.T) {
	_, err := NewZapLogger(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Error("any", "dropped", map[string]interface{}{"error": "x"})
	assert.NoError(t, l.Sync())
}
