package clean

import (
	"context"
	"fmt"
	"time"

	"jobpipe/internal/config"
	"jobpipe/internal/metrics"
	"jobpipe/internal/report"
	"jobpipe/internal/spreadsheet"
	"jobpipe/internal/store"
	"jobpipe/internal/table"

	"github.com/rs/zerolog"
)

// LoadFromStore reads the whole jobs table. A missing database file or jobs
// table is a DataSourceMissingError.
func LoadFromStore(ctx context.Context, dbPath string) (*table.Table, error) {
	db, err := store.OpenExisting(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.LoadJobs(ctx)
}

type Cleaner struct {
	DBPath     string
	OutputPath string
	AuditPath  string
	MetricsDir string
	RunID      string
	Log        zerolog.Logger
	Now        func() time.Time
}

func New(cfg config.Config, log zerolog.Logger, runID string) *Cleaner {
	return &Cleaner{
		DBPath:     cfg.Resolve(cfg.Paths.DB),
		OutputPath: cfg.Resolve(cfg.Paths.CleanedData),
		AuditPath:  cfg.Resolve(cfg.Paths.CleaningAudit),
		MetricsDir: cfg.Resolve(cfg.Paths.MetricsDir),
		RunID:      runID,
		Log:        log,
		Now:        time.Now,
	}
}

type Result struct {
	Analysis AnalysisSummary
	Report   Report
	Records  int
}

func (c *Cleaner) Run(ctx context.Context) (res Result, err error) {
	m := metrics.NewStage("clean")
	defer func() {
		m.Finish(err)
		if werr := m.WriteTextfile(c.MetricsDir); werr != nil {
			c.Log.Warn().Err(werr).Msg("metrics not written")
		}
	}()

	c.Log.Debug().
		Str("db", c.DBPath).
		Str("output", c.OutputPath).
		Str("audit", c.AuditPath).
		Msg("cleaning paths")

	// Lock creates the db directory, so check first.
	if err := store.Exists(c.DBPath); err != nil {
		c.Log.Error().Err(err).Msg("load failed")
		return res, err
	}
	lock, err := store.Lock(c.DBPath)
	if err != nil {
		return res, err
	}
	raw, err := LoadFromStore(ctx, c.DBPath)
	lock.Unlock()
	if err != nil {
		c.Log.Error().Err(err).Msg("load failed")
		return res, err
	}
	m.SetRecords("input", raw.Len())
	c.Log.Info().Int("records", raw.Len()).Msg("jobs loaded")

	res.Analysis = Analyze(raw)
	c.Log.Info().
		Int("duplicates", res.Analysis.Duplicates).
		Int("nulls", raw.TotalNulls()).
		Msg("analysis complete")

	cleaned, rep := Clean(raw)
	res.Report = rep
	res.Records = cleaned.Len()
	for _, f := range rep.Fills {
		c.Log.Debug().Str("column", f.Column).Str("strategy", string(f.Strategy)).Msg(f.Message())
	}

	if err := c.WriteArtifacts(cleaned, res.Analysis, rep); err != nil {
		c.Log.Error().Err(err).Msg("write artifacts failed")
		return res, err
	}
	m.SetRecords("output", res.Records)
	m.SetRecords("duplicates_removed", rep.DuplicatesRemoved+rep.PostNormalizationDuplicates)

	c.Log.Info().
		Int("records", res.Records).
		Int("duplicates_removed", rep.DuplicatesRemoved).
		Int("columns_filled", len(rep.Fills)).
		Msg("cleaning complete")
	return res, nil
}

// WriteArtifacts writes the cleaned spreadsheet and the cleaning report.
func (c *Cleaner) WriteArtifacts(cleaned *table.Table, before AnalysisSummary, rep Report) error {
	if err := spreadsheet.Write(c.OutputPath, cleaned); err != nil {
		return fmt.Errorf("write cleaned data: %w", err)
	}
	c.Log.Info().Str("path", c.OutputPath).Msg("cleaned data written")

	doc := BuildReport(before, rep, Analyze(cleaned), c.now(), c.RunID)
	if err := doc.WriteFile(c.AuditPath); err != nil {
		return err
	}
	c.Log.Info().Str("path", c.AuditPath).Msg("cleaning report written")
	return nil
}

func BuildReport(before AnalysisSummary, rep Report, after AnalysisSummary, generated time.Time, runID string) *report.Document {
	doc := report.New("Data Cleaning Report", generated, runID)

	doc.Section("Initial State")
	doc.Linef("Total records: %d", before.Records)
	doc.Linef("Duplicate records: %d", before.Duplicates)
	doc.Linef("Columns:")
	doc.Table([]string{"Column", "Type", "Nulls"}, columnRows(before))

	doc.Section("Operations")
	doc.Linef("Duplicate records removed: %d", rep.DuplicatesRemoved)
	if rep.PostNormalizationDuplicates > 0 {
		doc.Linef("Duplicates removed after normalization: %d", rep.PostNormalizationDuplicates)
	}
	doc.Linef("Null handling:")
	if len(rep.Fills) == 0 {
		doc.Item("no null values found")
	}
	for _, f := range rep.Fills {
		doc.Item("%s (%s)", f.Message(), f.Strategy)
	}
	if len(rep.TypeConversions) > 0 {
		doc.Linef("Type conversions:")
		for _, n := range rep.TypeConversions {
			doc.Item("%s: %s", n.Column, n.Description)
		}
	}
	if len(rep.Transformations) > 0 {
		doc.Linef("Transformations:")
		for _, n := range rep.Transformations {
			doc.Item("%s: %s", n.Column, n.Description)
		}
	}

	doc.Section("Final State")
	doc.Linef("Total records: %d", after.Records)
	doc.Linef("Duplicate records: %d", after.Duplicates)
	doc.Linef("Columns:")
	doc.Table([]string{"Column", "Type", "Nulls"}, columnRows(after))
	return doc
}

func columnRows(s AnalysisSummary) [][]any {
	rows := make([][]any, len(s.NullCounts))
	for i, nc := range s.NullCounts {
		typ := ""
		if i < len(s.ColumnTypes) {
			typ = s.ColumnTypes[i].Type
		}
		rows[i] = []any{nc.Column, typ, nc.Count}
	}
	return rows
}

func (c *Cleaner) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
