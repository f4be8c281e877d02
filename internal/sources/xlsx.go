package sources

import (
	"context"
	"os"
	"path/filepath"

	"jobpipe/internal/domain"
	"jobpipe/internal/spreadsheet"
	"jobpipe/internal/table"

	"github.com/rs/zerolog"
)

// SpreadsheetLoader reads the first sheet of an .xlsx workbook, falling back
// to the second engine when the first cannot parse the file.
type SpreadsheetLoader struct {
	Path   string
	Log    zerolog.Logger
	Reader *spreadsheet.Reader
}

func (l SpreadsheetLoader) Name() string { return filepath.Base(l.Path) }

func (l SpreadsheetLoader) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := os.Stat(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.DataSourceMissingError{Path: l.Path, Available: siblings(l.Path)}
		}
		return nil, err
	}
	if st.Size() == 0 {
		return nil, malformed(l.Path, "file is empty", nil)
	}

	r := spreadsheet.NewReader()
	if l.Reader != nil {
		cp := *l.Reader
		r = &cp
	}
	if r.OnFallback == nil {
		log := l.Log
		r.OnFallback = func(e spreadsheet.Engine, err error) {
			log.Warn().Err(err).Str("engine", e.Name()).Str("file", l.Name()).Msg("spreadsheet engine failed, trying fallback")
		}
	}

	t, err := r.Read(l.Path)
	if err != nil {
		return nil, malformed(l.Path, "no spreadsheet engine could read the workbook", err)
	}
	if t.Len() == 0 {
		return nil, malformed(l.Path, "workbook has no data rows", nil)
	}
	return t, nil
}
