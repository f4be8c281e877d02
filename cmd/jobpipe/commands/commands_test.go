package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"jobpipe/internal/spreadsheet"
	"jobpipe/internal/table"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	code := ExecuteContext(context.Background())
	return out.String(), code
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobpipe.yml")

	out, code := execute(t, "config", "init", "--config", path)
	require.Equal(t, 0, code)
	require.Contains(t, out, "wrote "+path)

	out, code = execute(t, "config", "init", "--config", path)
	require.Equal(t, 0, code)
	require.Contains(t, out, "already exists")

	out, code = execute(t, "config", "show", "--config", path, "--base-dir", dir)
	require.Equal(t, 0, code)
	require.Contains(t, out, "base_dir: "+dir)
	require.Contains(t, out, "arbeitnow")
}

func TestIngestServiceUnavailableExitsNonZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	t.Setenv("JOBPIPE_SOURCE_URL", srv.URL)

	dir := t.TempDir()
	_, code := execute(t, "ingest", "--config", filepath.Join(dir, "absent.yml"), "--base-dir", dir)
	require.Equal(t, 1, code)

	_, err := os.Stat(filepath.Join(dir, "db", "ingestion.db"))
	require.True(t, os.IsNotExist(err))
}

func TestRunAllStages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"title":"Engineer","company_name":"acme corp","location":"Berlin","remote":true,"url":"https://example.com/1"},
			{"title":"Designer","company_name":"globex","location":"Madrid","remote":false,"url":"https://example.com/2"}
		]}`)
	}))
	defer srv.Close()
	t.Setenv("JOBPIPE_SOURCE_URL", srv.URL)

	dir := t.TempDir()
	src := filepath.Join(dir, "data_sources")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "companies_info.json"),
		[]byte(`[{"name":"Acme Corp","industry":"IT01"},{"name":"Globex","industry":"FN02"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "salary_ranges.csv"),
		[]byte("job_title,min,max\nEngineer,50000,70000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "industry_data.xml"),
		[]byte(`<industries><industry><id>IT01</id><name>Software</name><growth_rate>4.2</growth_rate><avg_salary>65000</avg_salary></industry></industries>`), 0o644))
	locations, err := table.FromRows([]string{"city", "country"}, [][]any{{"Berlin", "DE"}})
	require.NoError(t, err)
	require.NoError(t, spreadsheet.Write(filepath.Join(src, "locations.xlsx"), locations))

	_, code := execute(t, "run", "--config", filepath.Join(dir, "absent.yml"), "--base-dir", dir)
	require.Equal(t, 0, code)

	enriched, err := spreadsheet.Read(filepath.Join(dir, "enriched_data", "enriched_data.xlsx"))
	require.NoError(t, err)
	require.Equal(t, 2, enriched.Len())
	require.Equal(t, "Acme Corp", enriched.Value(0, "company_name"))
	require.Equal(t, "DE", enriched.Value(0, "country"))
	require.Equal(t, "Software", enriched.Value(0, "industry_name"))
	require.Nil(t, enriched.Value(1, "min"))

	for _, p := range []string{
		"xlsx/ingestion.xlsx",
		"audit/ingestion.txt",
		"cleaned_data/cleaned_data.xlsx",
		"audit/cleaning_report.txt",
		"audit/enriched_report.txt",
		"metrics/jobpipe_ingest.prom",
		"metrics/jobpipe_clean.prom",
		"metrics/jobpipe_enrich.prom",
		"pipeline.log",
	} {
		_, err := os.Stat(filepath.Join(dir, p))
		require.NoError(t, err, p)
	}
}
