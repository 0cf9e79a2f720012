// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. It performs batched INSERTs inside a transaction; SQLite does
// not have a dedicated bulk-load API, but transactions keep performance
// acceptable for the extract sizes involved. The backend doubles as the
// in-process engine the pipeline tests run against.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"nycetl/internal/storage"
)

// Config holds SQLite repository configuration.
type Config struct {
	DSN           string
	Table         string
	Columns       []string
	KeyColumns    []string
	UpdateColumns []string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:ingest.db?cache=shared"
//	":memory:"
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, &storage.Error{Kind: storage.ErrConnection, Backend: "sqlite", Op: "ping", Err: err}
	}

	// A memory DSN holds its data in the single connection; more than one
	// connection would see an empty database.
	db.SetMaxOpenConns(1)

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// InsertBatch inserts the given rows using a single transaction and a
// prepared statement, upserting on the configured key columns when set.
func (r *Repository) InsertBatch(ctx context.Context, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(r.cfg.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)%s",
		r.cfg.Table,
		strings.Join(r.cfg.Columns, ", "),
		strings.Join(placeholders, ", "),
		r.conflictClause(),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(r.cfg.Columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: row %d has %d values; want %d", i, len(row), len(r.cfg.Columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, classify("insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return int64(len(rows)), nil
}

// conflictClause builds the ON CONFLICT tail for keyed tables.
func (r *Repository) conflictClause() string {
	if len(r.cfg.KeyColumns) == 0 {
		return ""
	}
	update := r.cfg.UpdateColumns
	if len(update) == 0 {
		keySet := make(map[string]struct{}, len(r.cfg.KeyColumns))
		for _, k := range r.cfg.KeyColumns {
			keySet[k] = struct{}{}
		}
		for _, c := range r.cfg.Columns {
			if _, ok := keySet[c]; !ok {
				update = append(update, c)
			}
		}
	}
	assigns := make([]string, len(update))
	for i, c := range update {
		assigns[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return fmt.Sprintf(
		" ON CONFLICT(%s) DO UPDATE SET %s",
		strings.Join(r.cfg.KeyColumns, ", "),
		strings.Join(assigns, ", "),
	)
}

// Count returns the total row count of the configured table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.cfg.Table)
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// GroupCount returns the value distribution of one column; NULL groups under
// the "NULL" key.
func (r *Repository) GroupCount(ctx context.Context, column string) (map[string]int64, error) {
	q := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s GROUP BY %s", column, r.cfg.Table, column)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: group count: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			v sql.NullString
			n int64
		)
		if err := rows.Scan(&v, &n); err != nil {
			return nil, fmt.Errorf("sqlite: group count scan: %w", err)
		}
		key := "NULL"
		if v.Valid {
			key = v.String
		}
		out[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: group count: %w", err)
	}
	return out, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) using the underlying
// database/sql connection.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// classify maps the driver's flat error strings onto the storage taxonomy.
// modernc.org/sqlite does not export stable error codes for every case, so
// constraint detection is textual.
func classify(op string, err error) error {
	kind := storage.ErrUnknown
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		kind = storage.ErrConstraint
	}
	return &storage.Error{Kind: kind, Backend: "sqlite", Op: op, Err: err}
}
