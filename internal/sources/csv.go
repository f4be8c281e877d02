package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"jobpipe/internal/table"
)

// CSVLoader reads a comma separated file with a header row. Column types are
// inferred from the values.
type CSVLoader struct {
	Path string
}

func (l CSVLoader) Name() string { return filepath.Base(l.Path) }

func (l CSVLoader) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, malformed(l.Path, "parse csv", err)
	}
	if len(records) == 0 {
		return nil, malformed(l.Path, "missing header row", nil)
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	if err := checkHeader(header); err != nil {
		return nil, malformed(l.Path, err.Error(), nil)
	}
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return nil, malformed(l.Path, fmt.Sprintf("row %d has %d fields, header has %d", i+2, len(rec), len(header)), nil)
		}
	}
	return table.FromColumns(header, records[1:]), nil
}

func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("empty column name at position %d", i+1)
		}
		if seen[h] {
			return fmt.Errorf("duplicate column name %q", h)
		}
		seen[h] = true
	}
	return nil
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
