package dataset

import "nycetl/internal/schema"

// The heat vulnerability index ranking is a tiny lookup extract: one row per
// zip code tabulation area. The index column name carries the target table's
// historical spelling. The small batch size is deliberate; the table is small
// enough that per-batch progress is the only feedback the run produces.
func init() {
	register(&schema.Dataset{
		Name:       "heat_vulnerability",
		Table:      "heat_vulnerability_index_rankings",
		SourcePath: "data/heat_vulnerability_index_rankings.csv",
		BatchSize:  10,
		Required: []string{
			"zip_code_tabulation_area",
			"heat_vulerability_index",
		},
		Columns: []schema.Column{
			text("zip_code_tabulation_area"),
			text("heat_vulerability_index"),
			{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
		},
	})
}
