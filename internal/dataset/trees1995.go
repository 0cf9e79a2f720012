package dataset

import "nycetl/internal/schema"

// The 1995 census is the oldest extract: free-text condition grades, a
// record_id that arrives as "recordid", and a handful of numeric columns
// buried in text. Diameter readings above 400 are instrument noise.
func init() {
	register(&schema.Dataset{
		Name:       "trees_1995",
		Table:      "nyc_open_source_database_1995",
		SourcePath: "data/1995_street_tree_census.csv",
		BatchSize:  10000,
		Required: []string{
			"recordid", "address", "house_number", "street", "postcode_original",
			"community_board_original", "site", "species", "diameter", "condition",
			"wires", "sidewalk_condition", "support_structure", "borough",
			"x", "y", "longitude", "latitude",
			"cb_new", "zip_new", "censustract_2010", "censusblock_2010",
			"nta_2010", "segmentid", "spc_common", "spc_latin", "location",
			"council_district", "bin", "bbl",
		},
		Columns: concat(
			[]schema.Column{
				{Name: "record_id", Rule: schema.Rule{Kind: schema.Int, Source: "recordid"}},
			},
			textCols("address", "house_number", "street", "postcode_original",
				"community_board_original", "site", "species"),
			[]schema.Column{
				{Name: "diameter", Rule: schema.Rule{Kind: schema.BoundedInt, Low: 0, High: 400}},
				text("condition"),
				{Name: "health_3cat", Rule: schema.Rule{Kind: schema.Category, Source: "condition", Vocab: legacyHealthVocab}},
				{Name: "wires", Rule: schema.Rule{Kind: schema.Bool}},
				text("sidewalk_condition"),
				text("support_structure"),
				text("borough"),
				{Name: "x", Rule: schema.Rule{Kind: schema.Decimal}},
				{Name: "y", Rule: schema.Rule{Kind: schema.Decimal}},
				{Name: "longitude", Rule: schema.Rule{Kind: schema.Decimal}},
				{Name: "latitude", Rule: schema.Rule{Kind: schema.Decimal}},
			},
			textCols("cb_new", "zip_new", "censustract_2010", "censusblock_2010",
				"nta_2010", "segmentid", "spc_common", "spc_latin", "location"),
			[]schema.Column{
				{Name: "council_district", Rule: schema.Rule{Kind: schema.Int}},
				{Name: "bin", Rule: schema.Rule{Kind: schema.Int}},
				{Name: "bbl", Rule: schema.Rule{Kind: schema.Int}},
				{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
			},
		),
		GroupChecks: []string{"health_3cat"},
	})
}

func concat(groups ...[]schema.Column) []schema.Column {
	var out []schema.Column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
