// Package schema defines the static, per-dataset configuration model for the
// ingestion pipeline. A Dataset value describes one CSV extract and one target
// table: the required source columns, the insert-ordered column list with a
// conversion rule per column, the batching and upsert behavior, and the
// post-load verification checks. Datasets are created once as static
// configuration and never mutated at runtime.
package schema

import "fmt"

// Record is one row keyed by normalized column name. The parser produces raw
// (all-text) records; the transformer produces typed ones.
type Record map[string]any

// RuleKind selects the conversion applied to one target column.
type RuleKind uint8

const (
	// Text passes the trimmed cell through, mapping the null vocabulary to nil.
	Text RuleKind = iota
	// Int parses an integer after separator cleanup.
	Int
	// BoundedInt parses an integer and rejects values outside [Low, High].
	BoundedInt
	// Decimal parses a floating point number.
	Decimal
	// Bool maps the tri-state synonym sets onto 1/0/nil.
	Bool
	// Date parses the ordered date layouts into ISO YYYY-MM-DD.
	Date
	// MonthStart converts a YYYY-MM period into the first day of the month.
	MonthStart
	// Category buckets a label through an exact-membership vocabulary.
	Category
	// Borough infers the NYC borough from a free-text place name.
	Borough
	// GeoLevel classifies a place name as Borough/Neighborhood/Unknown.
	GeoLevel
	// Provenance is filled with the source file name by the pipeline.
	Provenance
	// Derived takes the value computed by the dataset's Derive/Finalize hooks.
	Derived
)

// Rule is the conversion recipe for one target column.
type Rule struct {
	Kind RuleKind

	// Source names the (normalized) source column the rule reads. Empty means
	// the source column shares the target column's name.
	Source string

	// Low/High bound a BoundedInt rule (closed range).
	Low, High int64

	// Vocab is the Category lookup table, keyed by lowercased source label.
	Vocab map[string]string
}

// Column pairs a target column name with its conversion rule. The order of
// the Columns slice is the insert order; it must match the target table.
type Column struct {
	Name string
	Rule Rule
}

// Dataset is the full static configuration for one extract → one table.
type Dataset struct {
	// Name is the CLI-facing dataset identifier (e.g. "trees_2015").
	Name string

	// Table is the target table name.
	Table string

	// SourcePath is the default input path. It may point at a single CSV file
	// or at a directory of same-schema CSV files.
	SourcePath string

	// BatchSize is the number of converted records per insert transaction.
	BatchSize int

	// Required lists the normalized source columns that must be present in
	// the header; any absence is fatal before conversion starts.
	Required []string

	// Columns is the insert-ordered target column list.
	Columns []Column

	// KeyColumns names the natural key for upsert datasets. Empty means
	// insert-only.
	KeyColumns []string

	// UpdateColumns lists the columns rewritten on key conflict. Only
	// meaningful when KeyColumns is set.
	UpdateColumns []string

	// Positional, when non-empty, disables header-name mapping: the first
	// len(Positional) cells of each row are bound to these names in order.
	// Used for extracts whose header row is unusable.
	Positional []string

	// SkipUntilPrefix, when non-empty, drops leading lines until one starts
	// with the prefix. Used for files with a free-text preamble.
	SkipUntilPrefix string

	// RequireValues lists target columns that must be non-nil after
	// conversion; rows failing the check are dropped (not fatal).
	RequireValues []string

	// Derive, when set, runs once per record after column conversion and may
	// add values for Derived columns.
	Derive func(Record)

	// Finalize, when set, runs once over the full converted record set before
	// batching; used for whole-dataset derivations such as yearly means.
	Finalize func([]Record)

	// GroupChecks lists columns whose value distribution is reported by the
	// post-load verification step, in addition to the total row count.
	GroupChecks []string
}

// ColumnNames returns the insert-ordered target column names.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// SourceColumn resolves the effective source column for a rule.
func (c Column) SourceColumn() string {
	if c.Rule.Source != "" {
		return c.Rule.Source
	}
	return c.Name
}

// Check validates the dataset configuration. A failure here is a programmer
// error and must abort the run before any I/O happens: the insert-column
// order is the contract with the target table, and a column without a usable
// rule would silently shift values.
func (d *Dataset) Check() error {
	if d.Name == "" {
		return fmt.Errorf("dataset: name must not be empty")
	}
	if d.Table == "" {
		return fmt.Errorf("dataset %s: table must not be empty", d.Name)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset %s: no insert columns configured", d.Name)
	}
	if d.BatchSize <= 0 {
		return fmt.Errorf("dataset %s: batch size must be > 0", d.Name)
	}

	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if c.Name == "" {
			return fmt.Errorf("dataset %s: unnamed insert column", d.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("dataset %s: duplicate insert column %q", d.Name, c.Name)
		}
		seen[c.Name] = struct{}{}

		switch c.Rule.Kind {
		case BoundedInt:
			if c.Rule.Low > c.Rule.High {
				return fmt.Errorf("dataset %s: column %q: bound [%d,%d] is empty", d.Name, c.Name, c.Rule.Low, c.Rule.High)
			}
		case Category:
			if len(c.Rule.Vocab) == 0 {
				return fmt.Errorf("dataset %s: column %q: category rule without vocabulary", d.Name, c.Name)
			}
		case Derived:
			if d.Derive == nil && d.Finalize == nil {
				return fmt.Errorf("dataset %s: column %q is derived but no Derive/Finalize hook is set", d.Name, c.Name)
			}
		}
	}

	for _, k := range d.KeyColumns {
		if _, ok := seen[k]; !ok {
			return fmt.Errorf("dataset %s: key column %q is not an insert column", d.Name, k)
		}
	}
	for _, u := range d.UpdateColumns {
		if _, ok := seen[u]; !ok {
			return fmt.Errorf("dataset %s: update column %q is not an insert column", d.Name, u)
		}
	}
	for _, r := range d.RequireValues {
		if _, ok := seen[r]; !ok {
			return fmt.Errorf("dataset %s: required-value column %q is not an insert column", d.Name, r)
		}
	}
	for _, g := range d.GroupChecks {
		if _, ok := seen[g]; !ok {
			return fmt.Errorf("dataset %s: group check column %q is not an insert column", d.Name, g)
		}
	}
	if len(d.UpdateColumns) > 0 && len(d.KeyColumns) == 0 {
		return fmt.Errorf("dataset %s: update columns without key columns", d.Name)
	}
	return nil
}
