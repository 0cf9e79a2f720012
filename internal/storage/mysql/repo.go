// Package mysql implements the MySQL-backed storage.Repository. It is the
// primary backend: the open-data tables live in MySQL, and the loader speaks
// the same dialect the tables were designed for (multi-row INSERT, optional
// ON DUPLICATE KEY UPDATE for keyed datasets).
package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"nycetl/internal/storage"
)

// MySQL server error numbers the adapter classifies specially.
const (
	errAccessDenied   = 1045 // ER_ACCESS_DENIED_ERROR
	errBadDatabase    = 1049 // ER_BAD_DB_ERROR
	errDuplicateEntry = 1062 // ER_DUP_ENTRY
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN           string
	Table         string
	Columns       []string
	KeyColumns    []string
	UpdateColumns []string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config

	// insertPrefix and rowPlaceholders are precomputed; only the VALUES list
	// repetition and the upsert tail vary per call.
	insertPrefix    string
	rowPlaceholders string
	upsertTail      string
}

// NewRepository opens a MySQL connection pool and returns a Repository plus a
// Close function for cleanup. The ping fails fast and classified: bad
// credentials and a missing database are reported as such, not as generic
// connection noise.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	if len(cfg.Columns) == 0 {
		return nil, nil, fmt.Errorf("mysql: columns must not be empty")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, classify("ping", err)
	}

	r := &Repository{db: db, cfg: cfg}
	r.insertPrefix, r.rowPlaceholders, r.upsertTail = buildStatements(cfg)

	closeFn := func() { _ = db.Close() }
	return r, closeFn, nil
}

// buildStatements precomputes the fixed parts of the batch insert statement.
func buildStatements(cfg Config) (prefix, rowPlaceholders, upsertTail string) {
	prefix = fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES ",
		ident(cfg.Table),
		strings.Join(idents(cfg.Columns), ", "),
	)
	ph := make([]string, len(cfg.Columns))
	for i := range ph {
		ph[i] = "?"
	}
	rowPlaceholders = "(" + strings.Join(ph, ", ") + ")"
	if len(cfg.KeyColumns) > 0 {
		update := cfg.UpdateColumns
		if len(update) == 0 {
			update = nonKeyColumns(cfg.Columns, cfg.KeyColumns)
		}
		assigns := make([]string, len(update))
		for i, c := range update {
			assigns[i] = fmt.Sprintf("%s = VALUES(%s)", ident(c), ident(c))
		}
		upsertTail = " ON DUPLICATE KEY UPDATE " + strings.Join(assigns, ", ")
	}
	return prefix, rowPlaceholders, upsertTail
}

// InsertBatch writes one batch as a single multi-row statement inside its own
// transaction. Either the whole batch commits or the whole batch rolls back.
func (r *Repository) InsertBatch(ctx context.Context, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.Grow(len(r.insertPrefix) + len(rows)*(len(r.rowPlaceholders)+1) + len(r.upsertTail))
	sb.WriteString(r.insertPrefix)
	args := make([]any, 0, len(rows)*len(r.cfg.Columns))
	for i, row := range rows {
		if len(row) != len(r.cfg.Columns) {
			return 0, fmt.Errorf("mysql: row %d has %d values; want %d", i, len(row), len(r.cfg.Columns))
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(r.rowPlaceholders)
		args = append(args, row...)
	}
	sb.WriteString(r.upsertTail)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify("begin tx", err)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		_ = tx.Rollback()
		return 0, classify("insert batch", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, classify("commit", err)
	}
	// RowsAffected counts updated rows double under ON DUPLICATE KEY UPDATE,
	// so the written-row figure is the batch length.
	return int64(len(rows)), nil
}

// Count returns the total row count of the configured table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", ident(r.cfg.Table))
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, classify("count", err)
	}
	return n, nil
}

// GroupCount returns the value distribution of one column; NULL groups under
// the "NULL" key.
func (r *Repository) GroupCount(ctx context.Context, column string) (map[string]int64, error) {
	q := fmt.Sprintf(
		"SELECT %s, COUNT(*) FROM %s GROUP BY %s",
		ident(column), ident(r.cfg.Table), ident(column),
	)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify("group count", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			v sql.NullString
			n int64
		)
		if err := rows.Scan(&v, &n); err != nil {
			return nil, classify("group count scan", err)
		}
		key := "NULL"
		if v.Valid {
			key = v.String
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
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return classify("exec", err)
	}
	return nil
}

// classify wraps a driver error with its storage classification.
func classify(op string, err error) error {
	kind := storage.ErrUnknown

	var me *gomysql.MySQLError
	switch {
	case errors.As(err, &me):
		switch me.Number {
		case errAccessDenied:
			kind = storage.ErrAuth
		case errBadDatabase:
			kind = storage.ErrBadDatabase
		case errDuplicateEntry:
			kind = storage.ErrConstraint
		}
	case isConnErr(err):
		kind = storage.ErrConnection
	}
	return &storage.Error{Kind: kind, Backend: "mysql", Op: op, Err: err}
}

func isConnErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, gomysql.ErrInvalidConn) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// ident backquotes an identifier the way the target schema declares them.
func ident(s string) string { return "`" + s + "`" }

func idents(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident(c)
	}
	return out
}

func nonKeyColumns(columns, keys []string) []string {
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}
	var out []string
	for _, c := range columns {
		if _, ok := keySet[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
