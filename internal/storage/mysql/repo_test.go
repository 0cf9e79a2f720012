package mysql

import (
	"errors"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"

	"nycetl/internal/storage"
)

/*
TestBuildStatements pins the generated SQL shape: backquoted identifiers,
one placeholder per column, and an ON DUPLICATE KEY UPDATE tail only for
keyed tables that rewrites the non-key columns.
*/
func TestBuildStatements(t *testing.T) {
	prefix, ph, tail := buildStatements(Config{
		Table:   "trees_2015",
		Columns: []string{"tree_id", "health_3cat", "file_name"},
	})
	if prefix != "INSERT INTO `trees_2015` (`tree_id`, `health_3cat`, `file_name`) VALUES " {
		t.Fatalf("prefix = %q", prefix)
	}
	if ph != "(?, ?, ?)" {
		t.Fatalf("placeholders = %q", ph)
	}
	if tail != "" {
		t.Fatalf("tail = %q; want empty for insert-only", tail)
	}
}

func TestBuildStatements_Upsert(t *testing.T) {
	_, _, tail := buildStatements(Config{
		Table:      "cdo_monthly_temp",
		Columns:    []string{"station", "month_start", "tavg", "file_name"},
		KeyColumns: []string{"station", "month_start"},
	})
	want := " ON DUPLICATE KEY UPDATE `tavg` = VALUES(`tavg`), `file_name` = VALUES(`file_name`)"
	if tail != want {
		t.Fatalf("tail = %q; want %q", tail, want)
	}
}

func TestBuildStatements_ExplicitUpdateColumns(t *testing.T) {
	_, _, tail := buildStatements(Config{
		Table:         "cdo_monthly_temp",
		Columns:       []string{"station", "month_start", "tavg", "tmax"},
		KeyColumns:    []string{"station", "month_start"},
		UpdateColumns: []string{"tavg"},
	})
	want := " ON DUPLICATE KEY UPDATE `tavg` = VALUES(`tavg`)"
	if tail != want {
		t.Fatalf("tail = %q; want %q", tail, want)
	}
}

/*
TestClassify maps the MySQL server error numbers onto the storage taxonomy:
1045 access denied, 1049 unknown database, 1062 duplicate entry.
*/
func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want storage.ErrKind
	}{
		{&gomysql.MySQLError{Number: 1045, Message: "Access denied"}, storage.ErrAuth},
		{&gomysql.MySQLError{Number: 1049, Message: "Unknown database"}, storage.ErrBadDatabase},
		{&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, storage.ErrConstraint},
		{&gomysql.MySQLError{Number: 1064, Message: "Syntax"}, storage.ErrUnknown},
		{gomysql.ErrInvalidConn, storage.ErrConnection},
		{errors.New("misc"), storage.ErrUnknown},
	}
	for _, c := range cases {
		got := classify("op", c.err)
		if storage.KindOf(got) != c.want {
			t.Fatalf("classify(%v) kind = %v; want %v", c.err, storage.KindOf(got), c.want)
		}
		var se *storage.Error
		if !errors.As(got, &se) || se.Backend != "mysql" || se.Op != "op" {
			t.Fatalf("classify(%v) = %#v; want mysql storage.Error", c.err, got)
		}
	}
}
