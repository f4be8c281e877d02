package store

import (
	"context"
	"database/sql"
	"fmt"

	"jobpipe/internal/domain"
	"jobpipe/internal/table"
)

const jobsTable = "jobs"

// InsertPostings appends every posting as a new row and returns the number
// inserted. Rows are never deduplicated; re-ingesting duplicates them.
func (d *DB) InsertPostings(ctx context.Context, postings []domain.JobPosting) (int, error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO jobs (title, company_name, location, remote, url)
VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range postings {
		if _, err := stmt.ExecContext(ctx, p.Title, p.CompanyName, p.Location, p.Remote, p.URL); err != nil {
			return 0, fmt.Errorf("insert job %d (%q): %w", i, p.URL, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(postings), nil
}

func (d *DB) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

// SampleJobs returns the first limit rows in insertion order.
func (d *DB) SampleJobs(ctx context.Context, limit int) (*table.Table, error) {
	return d.Query(ctx, `SELECT * FROM jobs ORDER BY rowid LIMIT ?;`, limit)
}

// LoadJobs returns the whole jobs table. A store without the table is
// reported as a missing data source.
func (d *DB) LoadJobs(ctx context.Context) (*table.Table, error) {
	ok, err := d.HasTable(ctx, jobsTable)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.DataSourceMissingError{Path: d.Path + "#" + jobsTable}
	}
	return d.Query(ctx, `SELECT * FROM jobs ORDER BY rowid;`)
}

func (d *DB) HasTable(ctx context.Context, name string) (bool, error) {
	var one int
	err := d.Pool.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1;`, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Query runs an arbitrary SELECT and materializes the result. Declared column
// types are kept on the table.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*table.Table, error) {
	rows, err := d.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := table.New(cols...)
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			out.SetDeclaredType(cols[i], ct.DatabaseTypeName())
		}
	}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		if err := out.Append(vals...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
