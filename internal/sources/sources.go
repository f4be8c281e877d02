// Package sources loads the auxiliary datasets joined by the enrichment stage.
// Every loader returns a table.Table regardless of the file format.
package sources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"jobpipe/internal/domain"
	"jobpipe/internal/table"
)

type Loader interface {
	// Name is the file name used in logs and reports.
	Name() string
	Load(ctx context.Context) (*table.Table, error)
}

// open checks that path exists and opens it. A missing file is reported as a
// DataSourceMissingError listing the files next to it.
func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, &domain.DataSourceMissingError{Path: path, Available: siblings(path)}
	}
	return nil, err
}

func siblings(path string) []string {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

func malformed(path, reason string, err error) error {
	return &domain.MalformedSourceError{Path: path, Reason: reason, Err: err}
}
