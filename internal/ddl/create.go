// Package ddl renders CREATE TABLE statements from dataset configurations, so
// the target tables can be created from the same column list and rules the
// loader inserts with. The output is MySQL-flavored; it is meant as a
// starting point for an operator, not as a migration system.
package ddl

import (
	"fmt"
	"strings"

	"nycetl/internal/schema"
)

// FromDataset maps a dataset's insert columns onto SQL column definitions.
// Every column is nullable: value-level conversion failures land as NULL by
// contract, and the required-value checks happen before insert, not in the
// table.
func FromDataset(d *schema.Dataset) TableDef {
	keyed := make(map[string]struct{}, len(d.KeyColumns))
	for _, k := range d.KeyColumns {
		keyed[k] = struct{}{}
	}

	t := TableDef{Name: d.Table, Columns: make([]ColumnDef, 0, len(d.Columns))}
	for _, c := range d.Columns {
		_, isKey := keyed[c.Name]
		t.Columns = append(t.Columns, ColumnDef{
			Name:    c.Name,
			SQLType: sqlType(c.Rule.Kind, isKey),
			Key:     isKey,
		})
	}
	return t
}

// sqlType picks the column type for a rule kind. Text columns that take part
// in the natural key become VARCHAR so they stay indexable.
func sqlType(k schema.RuleKind, key bool) string {
	switch k {
	case schema.Int, schema.BoundedInt:
		return "INT"
	case schema.Decimal, schema.Derived:
		return "DOUBLE"
	case schema.Bool:
		return "TINYINT(1)"
	case schema.Date, schema.MonthStart:
		return "DATE"
	case schema.Category, schema.GeoLevel:
		return "VARCHAR(16)"
	case schema.Borough:
		return "VARCHAR(32)"
	case schema.Provenance:
		return "VARCHAR(255)"
	default:
		if key {
			return "VARCHAR(64)"
		}
		return "TEXT"
	}
}

// BuildCreateTableSQL renders one CREATE TABLE statement. Key columns are
// collected into a UNIQUE KEY clause, which is what the upsert path conflicts
// against.
func BuildCreateTableSQL(t TableDef) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: table %s has no columns", name)
	}

	lines := make([]string, 0, len(t.Columns)+1)
	var keys []string
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("ddl: table %s has a column with an empty name", name)
		}
		if strings.TrimSpace(c.SQLType) == "" {
			return "", fmt.Errorf("ddl: column %s.%s missing a type", name, c.Name)
		}
		lines = append(lines, fmt.Sprintf("`%s` %s NULL", c.Name, c.SQLType))
		if c.Key {
			keys = append(keys, fmt.Sprintf("`%s`", c.Name))
		}
	}
	if len(keys) > 0 {
		lines = append(lines, fmt.Sprintf("UNIQUE KEY `uq_%s` (%s)", name, strings.Join(keys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (\n  %s\n);", name, strings.Join(lines, ",\n  ")), nil
}
