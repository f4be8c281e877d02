package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "pipeline.log")

	logger, closeFn, err := New(Options{Level: "info", File: file, Console: &console})
	require.NoError(t, err)

	ForStage(logger, "clean", "run-1").Info().Int("records", 3).Msg("loaded")
	logger.Debug().Msg("hidden")
	require.NoError(t, closeFn())

	require.Contains(t, console.String(), "loaded")
	require.NotContains(t, console.String(), "hidden")

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "clean", entry["stage"])
	require.Equal(t, "run-1", entry["run_id"])
	require.Equal(t, float64(3), entry["records"])
	require.Contains(t, entry, "time")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)
}
