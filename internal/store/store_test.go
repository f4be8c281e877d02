package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"jobpipe/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "db", "ingestion.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background(), zerolog.Nop()))
	return db
}

func postings(n int) []domain.JobPosting {
	out := make([]domain.JobPosting, n)
	for i := range out {
		out[i] = domain.JobPosting{
			Title:       "Engineer",
			CompanyName: "acme corp",
			Location:    "Berlin",
			Remote:      i%2 == 0,
			URL:         "http://x/" + string(rune('a'+i)),
		}
	}
	return out
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx, zerolog.Nop()))

	ok, err := db.HasTable(ctx, "jobs")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInsertCountAndSample(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	n, err := db.InsertPostings(ctx, postings(12))
	require.NoError(t, err)
	require.Equal(t, 12, n)

	// re-ingestion appends
	_, err = db.InsertPostings(ctx, postings(3))
	require.NoError(t, err)
	total, err := db.CountJobs(ctx)
	require.NoError(t, err)
	require.Equal(t, 15, total)

	sample, err := db.SampleJobs(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 10, sample.Len())
	require.Equal(t, []string{"id", "title", "company_name", "location", "remote", "url"}, sample.Columns())
	require.Equal(t, int64(1), sample.Value(0, "id"))
	require.Equal(t, int64(10), sample.Value(9, "id"))
	require.Equal(t, "BOOLEAN", sample.DeclaredType("remote"))
}

func TestLoadJobs(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	_, err := db.InsertPostings(ctx, postings(2))
	require.NoError(t, err)

	tb, err := db.LoadJobs(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, tb.Len())
	require.Equal(t, "acme corp", tb.Value(1, "company_name"))
}

func TestLoadJobsWithoutTable(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.LoadJobs(context.Background())
	var missing *domain.DataSourceMissingError
	require.True(t, errors.As(err, &missing), "got %v", err)
}

func TestOpenExistingMissingFile(t *testing.T) {
	_, err := OpenExisting(filepath.Join(t.TempDir(), "nope.db"))
	var missing *domain.DataSourceMissingError
	require.True(t, errors.As(err, &missing), "got %v", err)
}

func TestExistsDoesNotCreateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	err := Exists(filepath.Join(dir, "ingestion.db"))
	var missing *domain.DataSourceMissingError
	require.True(t, errors.As(err, &missing), "got %v", err)
	require.NoDirExists(t, dir)
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "ingestion.db")
	first, err := Lock(path)
	require.NoError(t, err)

	_, err = Lock(path)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Unlock())
	again, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, again.Unlock())
}
