// Package postgres implements a Postgres repository using pgx v5. Insert-only
// datasets load through COPY; keyed datasets use a multi-row INSERT with an
// ON CONFLICT upsert. Both paths run one transaction per batch.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nycetl/internal/storage"
)

// SQLSTATE classes the adapter classifies specially.
const (
	codeInvalidPassword    = "28P01"
	codeInvalidAuthSpec    = "28000"
	codeInvalidCatalogName = "3D000"
	codeUniqueViolation    = "23505"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN           string   // connection string for pgxpool
	Table         string   // target table name, optionally schema-qualified
	Columns       []string // ordered columns for COPY and INSERT
	KeyColumns    []string // conflict target columns
	UpdateColumns []string // columns rewritten on conflict
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, classify("ping", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// InsertBatch writes one batch in its own transaction. Insert-only tables go
// through COPY; keyed tables go through a multi-row upsert statement.
func (r *Repository) InsertBatch(ctx context.Context, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i, row := range rows {
		if len(row) != len(r.cfg.Columns) {
			return 0, fmt.Errorf("postgres: row %d has %d values; want %d", i, len(row), len(r.cfg.Columns))
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, classify("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var n int64
	if len(r.cfg.KeyColumns) == 0 {
		n, err = tx.CopyFrom(ctx, tableIdent(r.cfg.Table), r.cfg.Columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, classify("copy", err)
		}
	} else {
		if _, err := tx.Exec(ctx, r.upsertSQL(len(rows)), flatten(rows)...); err != nil {
			return 0, classify("upsert", err)
		}
		n = int64(len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classify("commit", err)
	}
	return n, nil
}

// upsertSQL builds the multi-row INSERT ... ON CONFLICT statement for nRows.
func (r *Repository) upsertSQL(nRows int) string {
	cols := r.cfg.Columns
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", r.cfg.Table, strings.Join(cols, ", "))
	arg := 1
	for i := 0; i < nRows; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('(')
		for j := range cols {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "$%d", arg)
			arg++
		}
		sb.WriteByte(')')
	}

	update := r.cfg.UpdateColumns
	if len(update) == 0 {
		keySet := make(map[string]struct{}, len(r.cfg.KeyColumns))
		for _, k := range r.cfg.KeyColumns {
			keySet[k] = struct{}{}
		}
		for _, c := range cols {
			if _, ok := keySet[c]; !ok {
				update = append(update, c)
			}
		}
	}
	assigns := make([]string, len(update))
	for i, c := range update {
		assigns[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}
	fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(r.cfg.KeyColumns, ", "), strings.Join(assigns, ", "))
	return sb.String()
}

// Count returns the total row count of the configured table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.cfg.Table)
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, classify("count", err)
	}
	return n, nil
}

// GroupCount returns the value distribution of one column; NULL groups under
// the "NULL" key.
func (r *Repository) GroupCount(ctx context.Context, column string) (map[string]int64, error) {
	q := fmt.Sprintf("SELECT %s::text, COUNT(*) FROM %s GROUP BY 1", column, r.cfg.Table)
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, classify("group count", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			v *string
			n int64
		)
		if err := rows.Scan(&v, &n); err != nil {
			return nil, classify("group count scan", err)
		}
		key := "NULL"
		if v != nil {
			key = *v
		}
		out[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, classify("group count", err)
	}
	return out, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, stmt); err != nil {
		return classify("exec", err)
	}
	return nil
}

// classify wraps a pgx error with its storage classification.
func classify(op string, err error) error {
	kind := storage.ErrUnknown

	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case codeInvalidPassword, codeInvalidAuthSpec:
			kind = storage.ErrAuth
		case codeInvalidCatalogName:
			kind = storage.ErrBadDatabase
		case codeUniqueViolation:
			kind = storage.ErrConstraint
		}
	case isConnErr(err):
		kind = storage.ErrConnection
	}
	return &storage.Error{Kind: kind, Backend: "postgres", Op: op, Err: err}
}

func isConnErr(err error) bool {
	var ne net.Error
	return errors.As(err, &ne)
}

// tableIdent splits an optionally schema-qualified name into a pgx.Identifier.
func tableIdent(table string) pgx.Identifier {
	parts := strings.Split(table, ".")
	return pgx.Identifier(parts)
}

func flatten(rows [][]any) []any {
	if len(rows) == 0 {
		return nil
	}
	out := make([]any, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
