// Package enrich left-joins the cleaned dataset against the auxiliary
// sources and reports what each join contributed.
package enrich

import (
	"context"
	"fmt"

	"jobpipe/internal/config"
	"jobpipe/internal/sources"
	"jobpipe/internal/table"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Step joins one source onto the running table on LeftKey == RightKey.
type Step struct {
	Source   sources.Loader
	LeftKey  string
	RightKey string
}

// DropAfterJoin are the right-side key columns removed from the result.
var DropAfterJoin = []string{"name", "job_title", "city", sources.IndustryID}

// DefaultSteps is the fixed join order: companies, salaries, locations,
// industries.
func DefaultSteps(cfg config.Config, log zerolog.Logger) []Step {
	ds := cfg.DataSources
	return []Step{
		{Source: sources.JSONLoader{Path: cfg.DataSource(ds.Companies)}, LeftKey: "company_name", RightKey: "name"},
		{Source: sources.CSVLoader{Path: cfg.DataSource(ds.Salaries)}, LeftKey: "title", RightKey: "job_title"},
		{Source: sources.SpreadsheetLoader{Path: cfg.DataSource(ds.Locations), Log: log}, LeftKey: "location", RightKey: "city"},
		{Source: sources.XMLLoader{Path: cfg.DataSource(ds.Industries)}, LeftKey: "industry", RightKey: sources.IndustryID},
	}
}

type SourceReport struct {
	Source         string
	LeftKey        string
	RightKey       string
	Records        int // rows in the source
	MatchedRecords int // output rows carrying a match
	NewColumns     []string
	DuplicateKeys  int
	NearMisses     []NearMiss
}

type Report struct {
	BaseRecords     int
	BaseColumns     int
	FinalRecords    int
	FinalColumns    int
	NewColumnsTotal int
	Sources         []SourceReport
	Operations      []string
	DroppedColumns  []string
}

// Enrich loads every source up front, in parallel, then applies the steps in
// order. base is not modified.
func Enrich(ctx context.Context, base *table.Table, steps []Step, log zerolog.Logger) (*table.Table, Report, error) {
	rep := Report{BaseRecords: base.Len(), BaseColumns: base.Width()}

	loaded, err := loadSources(ctx, steps, log)
	if err != nil {
		return nil, rep, err
	}

	cur := base
	for i, st := range steps {
		right := loaded[i]
		before := cur.Columns()

		next, stats, err := cur.LeftJoin(right, st.LeftKey, st.RightKey)
		if err != nil {
			return nil, rep, fmt.Errorf("join %s: %w", st.Source.Name(), err)
		}

		sr := SourceReport{
			Source:         st.Source.Name(),
			LeftKey:        st.LeftKey,
			RightKey:       st.RightKey,
			Records:        right.Len(),
			MatchedRecords: stats.MatchedRows,
			NewColumns:     table.NewColumns(before, next.Columns()),
			DuplicateKeys:  stats.DuplicateKeys,
			NearMisses:     nearMisses(cur, right, st.LeftKey, st.RightKey),
		}
		rep.Sources = append(rep.Sources, sr)
		rep.Operations = append(rep.Operations,
			fmt.Sprintf("merge with %s on %s = %s: %d matching record(s)", sr.Source, st.LeftKey, st.RightKey, sr.MatchedRecords))

		ev := log.Info()
		if sr.DuplicateKeys > 0 {
			ev = log.Warn().Int("duplicate_keys", sr.DuplicateKeys)
		}
		ev.Str("source", sr.Source).
			Int("matched", sr.MatchedRecords).
			Int("rows", stats.OutputRows).
			Strs("new_columns", sr.NewColumns).
			Msg("source joined")

		cur = next
	}

	if cur == base {
		cur = base.Clone()
	}
	rep.DroppedColumns = cur.DropColumns(DropAfterJoin...)
	if len(rep.DroppedColumns) > 0 {
		rep.Operations = append(rep.Operations, fmt.Sprintf("dropped join key columns: %v", rep.DroppedColumns))
	}

	rep.FinalRecords = cur.Len()
	rep.FinalColumns = cur.Width()
	rep.NewColumnsTotal = rep.FinalColumns - rep.BaseColumns
	return cur, rep, nil
}

func loadSources(ctx context.Context, steps []Step, log zerolog.Logger) ([]*table.Table, error) {
	out := make([]*table.Table, len(steps))
	g, gctx := errgroup.WithContext(ctx)
	for i, st := range steps {
		g.Go(func() error {
			t, err := st.Source.Load(gctx)
			if err != nil {
				log.Error().Err(err).Str("source", st.Source.Name()).Msg("load failed")
				return err
			}
			log.Info().Str("source", st.Source.Name()).Int("records", t.Len()).Msg("source loaded")
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
