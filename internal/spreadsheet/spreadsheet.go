// Package spreadsheet reads and writes tables as .xlsx workbooks.
package spreadsheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jobpipe/internal/table"

	"github.com/xuri/excelize/v2"
)

const DefaultSheet = "Sheet1"

// Write stores t as the first sheet of a new workbook at path, header row
// first. Null cells are left blank. Parent directories are created.
func Write(path string, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for c, name := range t.Columns() {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(DefaultSheet, cell, name); err != nil {
			return fmt.Errorf("write header %q: %w", name, err)
		}
	}

	for r := 0; r < t.Len(); r++ {
		for c, v := range t.Row(r) {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(DefaultSheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", r, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// Engine parses the first sheet of a workbook into a header and typed rows.
// String cells stay strings even when they look like numbers; numeric and
// boolean cells become int64, float64 or bool; blank cells are nil.
type Engine interface {
	Name() string
	ReadRows(path string) (header []string, rows [][]any, err error)
}

// Reader tries each engine in order and returns the first successful parse.
type Reader struct {
	Engines []Engine
	// OnFallback is called when an engine fails and another one is tried.
	OnFallback func(failed Engine, err error)
}

// NewReader returns a reader using excelize, then tealeg/xlsx.
func NewReader() *Reader {
	return &Reader{Engines: []Engine{ExcelizeEngine{}, TealegEngine{}}}
}

// Read parses the workbook into a table, keeping each cell's stored type.
func (r *Reader) Read(path string) (*table.Table, error) {
	if len(r.Engines) == 0 {
		return nil, errors.New("spreadsheet: no engines configured")
	}
	var errs []error
	for i, e := range r.Engines {
		header, rows, err := e.ReadRows(path)
		if err == nil {
			return table.FromRows(header, rows)
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
		if r.OnFallback != nil && i < len(r.Engines)-1 {
			r.OnFallback(e, err)
		}
	}
	return nil, errors.Join(errs...)
}

// Read parses a workbook with the default engines.
func Read(path string) (*table.Table, error) {
	return NewReader().Read(path)
}

// splitHeader separates the first row, pads data rows to the header width and
// drops fully blank trailing rows. Header names must be unique.
func splitHeader(all [][]any) ([]string, [][]any, error) {
	if len(all) == 0 {
		return nil, nil, errors.New("sheet has no header row")
	}
	header := make([]string, len(all[0]))
	for i, v := range all[0] {
		header[i] = table.Format(v)
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	if len(header) == 0 {
		return nil, nil, errors.New("sheet has an empty header row")
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, nil, fmt.Errorf("duplicate header %q", h)
		}
		seen[h] = true
	}

	rows := make([][]any, 0, len(all)-1)
	for _, r := range all[1:] {
		padded := make([]any, len(header))
		copy(padded, r)
		rows = append(rows, padded)
	}
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return header, rows, nil
}

func blank(r []any) bool {
	for _, v := range r {
		if v != nil && v != "" {
			return false
		}
	}
	return true
}
