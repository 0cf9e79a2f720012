// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. The backend is insert-only: none of the keyed
// datasets target SQL Server, so a MERGE path would be dead weight. Asking
// for an upsert is a configuration error, not a silent downgrade.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"nycetl/internal/storage"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, &storage.Error{Kind: storage.ErrConnection, Backend: "mssql", Op: "ping", Err: err}
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// InsertBatch bulk-copies one batch into the target table inside a single
// transaction.
func (r *Repository) InsertBatch(ctx context.Context, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(r.cfg.Table, mssql.BulkOptions{}, r.cfg.Columns...))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: prepare bulk copy: %w", err)
	}

	for i, row := range rows {
		if len(row) != len(r.cfg.Columns) {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("mssql: row %d has %d values; want %d", i, len(row), len(r.cfg.Columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("mssql: bulk copy row: %w", err)
		}
	}
	// The final Exec with no arguments flushes the bulk copy.
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: bulk copy flush: %w", err)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: close bulk copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		n = int64(len(rows))
	}
	return n, nil
}

// Count returns the total row count of the configured table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.cfg.Table)
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("mssql: count: %w", err)
	}
	return n, nil
}

// GroupCount returns the value distribution of one column; NULL groups under
// the "NULL" key.
func (r *Repository) GroupCount(ctx context.Context, column string) (map[string]int64, error) {
	q := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s GROUP BY %s", column, r.cfg.Table, column)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("mssql: group count: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			v sql.NullString
			n int64
		)
		if err := rows.Scan(&v, &n); err != nil {
			return nil, fmt.Errorf("mssql: group count scan: %w", err)
		}
		key := "NULL"
		if v.Valid {
			key = v.String
		}
		out[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mssql: group count: %w", err)
	}
	return out, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}
