package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStageTextfile(t *testing.T) {
	s := NewStage("enrich")
	s.SetRecords("input", 4)
	s.SetMatches("salary_ranges.csv", 1)
	s.Finish(nil)

	require.Equal(t, 4.0, testutil.ToFloat64(s.Records.WithLabelValues("input")))
	require.Equal(t, 1.0, testutil.ToFloat64(s.Success))

	dir := filepath.Join(t.TempDir(), "metrics")
	require.NoError(t, s.WriteTextfile(dir))

	b, err := os.ReadFile(filepath.Join(dir, "jobpipe_enrich.prom"))
	require.NoError(t, err)
	out := string(b)
	require.Contains(t, out, `jobpipe_records{phase="input",stage="enrich"} 4`)
	require.Contains(t, out, `jobpipe_enrichment_matches{source="salary_ranges.csv",stage="enrich"} 1`)
	require.Contains(t, out, `jobpipe_run_success{stage="enrich"} 1`)
}

func TestFinishFailure(t *testing.T) {
	s := NewStage("ingest")
	s.Finish(errors.New("boom"))
	require.Equal(t, 0.0, testutil.ToFloat64(s.Success))
	require.NoError(t, s.WriteTextfile(""))
}
