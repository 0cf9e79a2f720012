// Package transform turns raw text records into typed, insert-ordered rows
// according to a dataset's column rules. Value-level failures degrade to nil
// (SQL NULL); only a misconfigured rule is an error, and that aborts the run.
package transform

import (
	"fmt"

	"nycetl/internal/convert"
	"nycetl/internal/geo"
	"nycetl/internal/schema"
)

// Error reports a rule that cannot be applied. It indicates dataset
// misconfiguration, never dirty data.
type Error struct {
	Dataset string
	Column  string
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transform %s: column %q: %s", e.Dataset, e.Column, e.Reason)
}

// Apply converts one raw record into a typed record. Every insert column gets
// a value (possibly nil) except Derived columns, which the dataset's
// Derive/Finalize hooks fill afterwards. fileName feeds Provenance columns.
func Apply(d *schema.Dataset, raw map[string]string, fileName string) (schema.Record, error) {
	rec := make(schema.Record, len(d.Columns))
	for _, col := range d.Columns {
		src := raw[col.SourceColumn()]
		switch col.Rule.Kind {
		case schema.Text:
			rec[col.Name] = convert.Text(src)
		case schema.Int:
			rec[col.Name] = convert.ToInt(src)
		case schema.BoundedInt:
			rec[col.Name] = convert.ToIntBounded(src, col.Rule.Low, col.Rule.High)
		case schema.Decimal:
			rec[col.Name] = convert.ToDecimal(src)
		case schema.Bool:
			rec[col.Name] = convert.ToBool(src)
		case schema.Date:
			rec[col.Name] = convert.ToDate(src)
		case schema.MonthStart:
			rec[col.Name] = convert.ToMonthStart(src)
		case schema.Category:
			rec[col.Name] = convert.Category(src, col.Rule.Vocab)
		case schema.Borough:
			rec[col.Name] = geo.InferBorough(src)
		case schema.GeoLevel:
			rec[col.Name] = geo.InferLevel(src)
		case schema.Provenance:
			rec[col.Name] = fileName
		case schema.Derived:
			// filled by Derive/Finalize
		default:
			return nil, &Error{Dataset: d.Name, Column: col.Name, Reason: fmt.Sprintf("unknown rule kind %d", col.Rule.Kind)}
		}
	}
	if d.Derive != nil {
		d.Derive(rec)
	}
	return rec, nil
}

// MissingRequired reports whether the record lacks a value for any of the
// dataset's required-value columns. Such records are dropped, not fatal.
func MissingRequired(d *schema.Dataset, rec schema.Record) bool {
	for _, name := range d.RequireValues {
		if rec[name] == nil {
			return true
		}
	}
	return false
}

// Row flattens a typed record into the dataset's insert-column order. Columns
// the record never received come out as nil.
func Row(d *schema.Dataset, rec schema.Record) []any {
	out := make([]any, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = rec[col.Name]
	}
	return out
}
