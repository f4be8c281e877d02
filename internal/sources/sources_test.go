package sources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jobpipe/internal/domain"
	"jobpipe/internal/spreadsheet"
	"jobpipe/internal/table"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestJSONLoaderKeepsKeyOrder(t *testing.T) {
	p := writeFile(t, t.TempDir(), "companies_info.json", `[
		{"name": "Acme Corp", "industry": "IT01", "employees": 120},
		{"name": "Globex", "rating": 4.5, "tags": ["a", "b"]}
	]`)

	got, err := JSONLoader{Path: p}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"name", "industry", "employees", "rating", "tags"}, got.Columns())
	require.Equal(t, 2, got.Len())
	require.Equal(t, int64(120), got.Value(0, "employees"))
	require.Nil(t, got.Value(0, "rating"))
	require.Equal(t, 4.5, got.Value(1, "rating"))
	require.Equal(t, `["a","b"]`, got.Value(1, "tags"))
}

func TestJSONLoaderRejectsNonArray(t *testing.T) {
	p := writeFile(t, t.TempDir(), "companies_info.json", `{"name": "Acme"}`)
	_, err := JSONLoader{Path: p}.Load(context.Background())
	var mal *domain.MalformedSourceError
	require.ErrorAs(t, err, &mal)
}

func TestCSVLoaderInfersTypes(t *testing.T) {
	p := writeFile(t, t.TempDir(), "salary_ranges.csv", "\ufeffjob_title,min,max\nEngineer,50000,70000\nDesigner,40000.5,\n")

	got, err := CSVLoader{Path: p}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"job_title", "min", "max"}, got.Columns())
	require.Equal(t, table.KindFloat, got.Kind("min"))
	require.Equal(t, table.KindInt, got.Kind("max"))
	require.Equal(t, int64(70000), got.Value(0, "max"))
	require.Nil(t, got.Value(1, "max"))
}

func TestCSVLoaderEmptyFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "salary_ranges.csv", "")
	_, err := CSVLoader{Path: p}.Load(context.Background())
	var mal *domain.MalformedSourceError
	require.ErrorAs(t, err, &mal)
}

func TestCSVLoaderRejectsBadShape(t *testing.T) {
	dir := t.TempDir()
	for name, c := range map[string]struct{ body, reason string }{
		"dup.csv":   {"job_title,min,min\nEngineer,1,2\n", `duplicate column name "min"`},
		"empty.csv": {"job_title,,max\nEngineer,1,2\n", "empty column name at position 2"},
		"long.csv":  {"job_title,min\nEngineer,1,2\n", "row 2 has 3 fields, header has 2"},
	} {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, dir, name, c.body)
			_, err := CSVLoader{Path: p}.Load(context.Background())
			var mal *domain.MalformedSourceError
			require.ErrorAs(t, err, &mal)
			require.Equal(t, c.reason, mal.Reason)
		})
	}
}

func TestMissingFileListsSiblings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "x\n")
	writeFile(t, dir, "a.json", "[]")

	loaders := []Loader{
		JSONLoader{Path: filepath.Join(dir, "companies_info.json")},
		CSVLoader{Path: filepath.Join(dir, "salary_ranges.csv")},
		SpreadsheetLoader{Path: filepath.Join(dir, "locations.xlsx"), Log: zerolog.Nop()},
		XMLLoader{Path: filepath.Join(dir, "industry_data.xml")},
	}
	for _, l := range loaders {
		t.Run(l.Name(), func(t *testing.T) {
			_, err := l.Load(context.Background())
			var missing *domain.DataSourceMissingError
			require.ErrorAs(t, err, &missing)
			require.Equal(t, []string{"a.json", "b.csv"}, missing.Available)
		})
	}
}

func TestSpreadsheetLoader(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "locations.xlsx")
	in, err := table.FromRows([]string{"city", "country"}, [][]any{{"Berlin", "DE"}, {"Madrid", "ES"}})
	require.NoError(t, err)
	require.NoError(t, spreadsheet.Write(p, in))

	got, err := SpreadsheetLoader{Path: p, Log: zerolog.Nop()}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	require.Equal(t, "ES", got.Value(1, "country"))
}

func TestSpreadsheetLoaderMalformed(t *testing.T) {
	dir := t.TempDir()

	empty := writeFile(t, dir, "empty.xlsx", "")
	_, err := SpreadsheetLoader{Path: empty, Log: zerolog.Nop()}.Load(context.Background())
	var mal *domain.MalformedSourceError
	require.ErrorAs(t, err, &mal)
	require.Equal(t, "file is empty", mal.Reason)

	garbage := writeFile(t, dir, "garbage.xlsx", "not a workbook")
	_, err = SpreadsheetLoader{Path: garbage, Log: zerolog.Nop()}.Load(context.Background())
	require.ErrorAs(t, err, &mal)

	headerOnly := filepath.Join(dir, "header.xlsx")
	require.NoError(t, spreadsheet.Write(headerOnly, table.New("city")))
	_, err = SpreadsheetLoader{Path: headerOnly, Log: zerolog.Nop()}.Load(context.Background())
	require.ErrorAs(t, err, &mal)
	require.Equal(t, "workbook has no data rows", mal.Reason)
}

type failingEngine struct{}

func (failingEngine) Name() string { return "broken" }
func (failingEngine) ReadRows(string) ([]string, [][]any, error) {
	return nil, nil, errors.New("boom")
}

func TestSpreadsheetLoaderFallback(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "locations.xlsx")
	in, err := table.FromRows([]string{"city"}, [][]any{{"Berlin"}})
	require.NoError(t, err)
	require.NoError(t, spreadsheet.Write(p, in))

	var failed []string
	r := &spreadsheet.Reader{
		Engines:    []spreadsheet.Engine{failingEngine{}, spreadsheet.ExcelizeEngine{}},
		OnFallback: func(e spreadsheet.Engine, _ error) { failed = append(failed, e.Name()) },
	}
	got, err := SpreadsheetLoader{Path: p, Reader: r}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"broken"}, failed)
	require.Equal(t, "Berlin", got.Value(0, "city"))
}

func TestSpreadsheetLoaderLeavesReaderUntouched(t *testing.T) {
	p := filepath.Join(t.TempDir(), "locations.xlsx")
	in, err := table.FromRows([]string{"city"}, [][]any{{"Berlin"}})
	require.NoError(t, err)
	require.NoError(t, spreadsheet.Write(p, in))

	r := spreadsheet.NewReader()
	_, err = SpreadsheetLoader{Path: p, Log: zerolog.Nop(), Reader: r}.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, r.OnFallback)
}

func TestXMLLoader(t *testing.T) {
	p := writeFile(t, t.TempDir(), "industry_data.xml", `<?xml version="1.0"?>
<industries>
  <industry><id>IT01</id><name>Software</name><growth_rate>4.2</growth_rate><avg_salary>65000</avg_salary></industry>
  <industry><id>FN02</id><name>Finance</name><growth_rate>1.5</growth_rate><avg_salary>72000.5</avg_salary></industry>
</industries>`)

	got, err := XMLLoader{Path: p}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"industry_id", "industry_name", "growth_rate", "avg_salary"}, got.Columns())
	require.Equal(t, "FN02", got.Value(1, IndustryID))
	require.Equal(t, 4.2, got.Value(0, IndustryGrowthRate))
	require.Equal(t, 65000.0, got.Value(0, IndustryAvgSalary))
}

func TestXMLLoaderRejectsIncompleteRecord(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"missing.xml": `<industries><industry><id>IT01</id><name>Software</name><growth_rate>4.2</growth_rate></industry></industries>`,
		"badnum.xml":  `<industries><industry><id>IT01</id><name>Software</name><growth_rate>fast</growth_rate><avg_salary>1</avg_salary></industry></industries>`,
		"broken.xml":  `<industries><industry>`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := XMLLoader{Path: writeFile(t, dir, name, body)}.Load(context.Background())
			var mal *domain.MalformedSourceError
			require.ErrorAs(t, err, &mal)
		})
	}
}
