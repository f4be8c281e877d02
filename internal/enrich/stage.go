package enrich

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"jobpipe/internal/config"
	"jobpipe/internal/domain"
	"jobpipe/internal/metrics"
	"jobpipe/internal/report"
	"jobpipe/internal/spreadsheet"
	"jobpipe/internal/table"

	"github.com/rs/zerolog"
)

// LoadBase reads the cleaned spreadsheet.
func LoadBase(path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.DataSourceMissingError{Path: path}
		}
		return nil, err
	}
	t, err := spreadsheet.Read(path)
	if err != nil {
		return nil, &domain.MalformedSourceError{Path: path, Reason: "read cleaned data", Err: err}
	}
	return t, nil
}

type Enricher struct {
	BasePath   string
	OutputPath string
	AuditPath  string
	MetricsDir string
	Steps      []Step
	RunID      string
	Log        zerolog.Logger
	Now        func() time.Time
}

func New(cfg config.Config, log zerolog.Logger, runID string) *Enricher {
	return &Enricher{
		BasePath:   cfg.Resolve(cfg.Paths.CleanedData),
		OutputPath: cfg.Resolve(cfg.Paths.EnrichedData),
		AuditPath:  cfg.Resolve(cfg.Paths.EnrichmentAudit),
		MetricsDir: cfg.Resolve(cfg.Paths.MetricsDir),
		Steps:      DefaultSteps(cfg, log),
		RunID:      runID,
		Log:        log,
		Now:        time.Now,
	}
}

func (e *Enricher) Run(ctx context.Context) (rep Report, err error) {
	m := metrics.NewStage("enrich")
	defer func() {
		m.Finish(err)
		if werr := m.WriteTextfile(e.MetricsDir); werr != nil {
			e.Log.Warn().Err(werr).Msg("metrics not written")
		}
	}()

	e.Log.Debug().
		Str("base", e.BasePath).
		Str("output", e.OutputPath).
		Str("audit", e.AuditPath).
		Msg("enrichment paths")

	base, err := LoadBase(e.BasePath)
	if err != nil {
		e.Log.Error().Err(err).Msg("load base failed")
		return rep, err
	}
	m.SetRecords("input", base.Len())
	e.Log.Info().Int("records", base.Len()).Msg("cleaned data loaded")

	enriched, rep, err := Enrich(ctx, base, e.Steps, e.Log)
	if err != nil {
		e.Log.Error().Err(err).Msg("enrichment failed")
		return rep, err
	}
	for _, s := range rep.Sources {
		m.SetMatches(s.Source, s.MatchedRecords)
		for _, nm := range s.NearMisses {
			e.Log.Warn().
				Str("source", s.Source).
				Str("key", nm.Key).
				Str("suggestion", nm.Suggestion).
				Float64("score", nm.Score).
				Msg("unmatched key resembles a source key")
		}
	}

	if err := e.WriteArtifacts(enriched, rep); err != nil {
		e.Log.Error().Err(err).Msg("write artifacts failed")
		return rep, err
	}
	m.SetRecords("output", rep.FinalRecords)

	e.Log.Info().
		Int("base_records", rep.BaseRecords).
		Int("final_records", rep.FinalRecords).
		Int("new_columns", rep.NewColumnsTotal).
		Msg("enrichment complete")
	return rep, nil
}

func (e *Enricher) WriteArtifacts(enriched *table.Table, rep Report) error {
	if err := spreadsheet.Write(e.OutputPath, enriched); err != nil {
		return fmt.Errorf("write enriched data: %w", err)
	}
	e.Log.Info().Str("path", e.OutputPath).Msg("enriched data written")

	if err := BuildReport(rep, e.BasePath, e.now(), e.RunID).WriteFile(e.AuditPath); err != nil {
		return err
	}
	e.Log.Info().Str("path", e.AuditPath).Msg("enrichment report written")
	return nil
}

func BuildReport(rep Report, basePath string, generated time.Time, runID string) *report.Document {
	doc := report.New("Data Enrichment Report", generated, runID)
	doc.Linef("Base dataset: %s", basePath)
	doc.Linef("Initial records: %d", rep.BaseRecords)
	doc.Linef("Final records: %d", rep.FinalRecords)
	doc.Linef("Columns added: %d", rep.NewColumnsTotal)

	doc.Section("Data Sources")
	rows := make([][]any, 0, len(rep.Sources))
	for _, s := range rep.Sources {
		rows = append(rows, []any{s.Source, s.LeftKey + " = " + s.RightKey, s.Records, s.MatchedRecords, s.DuplicateKeys})
	}
	doc.Table([]string{"Source", "Join", "Records", "Matched", "Duplicate keys"}, rows)
	for _, s := range rep.Sources {
		doc.Blank()
		doc.Linef("Source: %s", s.Source)
		doc.Item("Matching records: %d", s.MatchedRecords)
		doc.Item("Columns added: %s", strings.Join(s.NewColumns, ", "))
		for _, nm := range s.NearMisses {
			doc.Item("Unmatched %q resembles %q (%.2f)", nm.Key, nm.Suggestion, nm.Score)
		}
	}

	doc.Section("Operations")
	for _, op := range rep.Operations {
		doc.Item("%s", op)
	}

	doc.Section("Final Summary")
	doc.Linef("Total records: %d", rep.FinalRecords)
	doc.Linef("Total columns: %d", rep.FinalColumns)
	doc.Linef("Original columns: %d", rep.FinalColumns-rep.NewColumnsTotal)
	doc.Linef("Columns added: %d", rep.NewColumnsTotal)
	return doc
}

func (e *Enricher) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
