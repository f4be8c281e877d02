// Package report renders the plain-text audit files written by each stage.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

const timestampLayout = "2006-01-02 15:04:05"

type Document struct {
	lines []string
}

// New starts a document with a "=== TITLE ===" banner, the generation time
// and the run id.
func New(title string, generated time.Time, runID string) *Document {
	d := &Document{}
	d.lines = append(d.lines,
		fmt.Sprintf("=== %s ===", strings.ToUpper(title)),
		"Generated: "+generated.Format(timestampLayout),
	)
	if runID != "" {
		d.lines = append(d.lines, "Run ID: "+runID)
	}
	return d
}

// Section starts a new block, separated from the previous one by a blank line.
func (d *Document) Section(name string) {
	d.lines = append(d.lines, "", fmt.Sprintf("=== %s ===", strings.ToUpper(name)))
}

func (d *Document) Linef(format string, args ...any) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

// Item adds a "- " bullet.
func (d *Document) Item(format string, args ...any) {
	d.lines = append(d.lines, "- "+fmt.Sprintf(format, args...))
}

func (d *Document) Blank() { d.lines = append(d.lines, "") }

// Table renders rows as a light box-drawn table.
func (d *Document) Table(header []string, rows [][]any) {
	t := table.NewWriter()
	hr := make(table.Row, len(header))
	for i, h := range header {
		hr[i] = h
	}
	t.AppendHeader(hr)
	for _, r := range rows {
		t.AppendRow(table.Row(r))
	}
	t.SetStyle(table.StyleLight)
	d.lines = append(d.lines, strings.Split(t.Render(), "\n")...)
}

func (d *Document) String() string {
	return strings.Join(d.lines, "\n") + "\n"
}

// WriteFile replaces path with the document, creating parent directories.
func (d *Document) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(d.String()), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
