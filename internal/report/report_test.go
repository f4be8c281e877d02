package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDocument(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	d := New("Data cleaning report", at, "abc")
	d.Section("initial state")
	d.Linef("Total records: %d", 3)
	d.Item("%s: %d", "title", 1)
	d.Table([]string{"Column", "Nulls"}, [][]any{{"title", 1}, {"salary", 0}})

	out := d.String()
	require.Contains(t, out, "=== DATA CLEANING REPORT ===\nGenerated: 2024-03-01 09:30:00\nRun ID: abc\n")
	require.Contains(t, out, "\n\n=== INITIAL STATE ===\nTotal records: 3\n- title: 1\n")
	require.Contains(t, out, "COLUMN")
	require.Contains(t, out, "salary")

	path := filepath.Join(t.TempDir(), "audit", "report.txt")
	require.NoError(t, d.WriteFile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, out, string(b))
}
