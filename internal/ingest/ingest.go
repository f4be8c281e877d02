// Package ingest fetches job postings from the board API into the SQLite
// store and writes the sample spreadsheet and the ingestion audit.
package ingest

import (
	"context"
	"fmt"
	"time"

	"jobpipe/internal/config"
	"jobpipe/internal/metrics"
	"jobpipe/internal/report"
	"jobpipe/internal/spreadsheet"
	"jobpipe/internal/store"

	"github.com/rs/zerolog"
)

type Ingestor struct {
	Fetcher    Fetcher
	DBPath     string
	SamplePath string
	AuditPath  string
	MetricsDir string
	SampleSize int
	RunID      string
	Log        zerolog.Logger
	Now        func() time.Time
}

func New(cfg config.Config, log zerolog.Logger, runID string) *Ingestor {
	return &Ingestor{
		Fetcher:    NewAPIFetcher(cfg.Source.URL, cfg.HTTPTimeout(), cfg.Source.UserAgent, log),
		DBPath:     cfg.Resolve(cfg.Paths.DB),
		SamplePath: cfg.Resolve(cfg.Paths.IngestionSample),
		AuditPath:  cfg.Resolve(cfg.Paths.IngestionAudit),
		MetricsDir: cfg.Resolve(cfg.Paths.MetricsDir),
		SampleSize: cfg.Ingest.SampleSize,
		RunID:      runID,
		Log:        log,
		Now:        time.Now,
	}
}

type Result struct {
	Fetched  int
	Inserted int
	Stored   int
}

// IntegrityOK compares this run's fetch with the store total. Only meaningful
// on a fresh store: rows from earlier runs make it report a mismatch.
func (r Result) IntegrityOK() bool { return r.Fetched == r.Stored }

// Run fetches before touching the store, so a failed request leaves no
// database file behind.
func (in *Ingestor) Run(ctx context.Context) (res Result, err error) {
	m := metrics.NewStage("ingest")
	defer func() {
		m.Finish(err)
		if werr := m.WriteTextfile(in.MetricsDir); werr != nil {
			in.Log.Warn().Err(werr).Msg("metrics not written")
		}
	}()

	in.Log.Debug().
		Str("db", in.DBPath).
		Str("sample", in.SamplePath).
		Str("audit", in.AuditPath).
		Msg("ingestion paths")

	postings, err := in.Fetcher.Fetch(ctx)
	if err != nil {
		in.Log.Error().Err(err).Str("fetcher", in.Fetcher.Name()).Msg("fetch failed")
		return res, err
	}
	res.Fetched = len(postings)
	m.SetRecords("fetched", res.Fetched)
	in.Log.Info().Int("records", res.Fetched).Msg("postings fetched")

	lock, err := store.Lock(in.DBPath)
	if err != nil {
		return res, err
	}
	defer lock.Unlock()

	db, err := store.Open(in.DBPath)
	if err != nil {
		return res, err
	}
	defer db.Close()

	if err := db.Migrate(ctx, in.Log); err != nil {
		return res, err
	}

	res.Inserted, err = db.InsertPostings(ctx, postings)
	if err != nil {
		in.Log.Error().Err(err).Msg("persist failed")
		return res, err
	}
	m.SetRecords("inserted", res.Inserted)

	if err := in.writeSample(ctx, db); err != nil {
		return res, err
	}

	res.Stored, err = db.CountJobs(ctx)
	if err != nil {
		return res, err
	}
	m.SetRecords("stored", res.Stored)

	if err := in.writeAudit(res); err != nil {
		return res, err
	}

	ev := in.Log.Info()
	if !res.IntegrityOK() {
		ev = in.Log.Warn()
	}
	ev.Int("fetched", res.Fetched).
		Int("stored", res.Stored).
		Bool("integrity_ok", res.IntegrityOK()).
		Msg("ingestion complete")
	return res, nil
}

func (in *Ingestor) writeSample(ctx context.Context, db *store.DB) error {
	sample, err := db.SampleJobs(ctx, in.SampleSize)
	if err != nil {
		return err
	}
	if err := spreadsheet.Write(in.SamplePath, sample); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	in.Log.Info().Int("rows", sample.Len()).Str("path", in.SamplePath).Msg("sample written")
	return nil
}

func (in *Ingestor) writeAudit(res Result) error {
	doc := report.New("Ingestion Audit", in.now(), in.RunID)
	doc.Linef("Database: %s", in.DBPath)
	doc.Blank()
	doc.Linef("Records fetched from API: %d", res.Fetched)
	doc.Linef("Records stored in database: %d", res.Stored)
	if res.IntegrityOK() {
		doc.Linef("Integrity check: OK")
	} else {
		doc.Linef("Integrity check: ERROR")
	}
	return doc.WriteFile(in.AuditPath)
}

func (in *Ingestor) now() time.Time {
	if in.Now == nil {
		return time.Now()
	}
	return in.Now()
}
