package dataset

import "nycetl/internal/schema"

// The 2005 census grades tree status on the legacy four-step scale and
// records 22 yes/no site observations that land in TINYINT columns. The
// CSV's own objectid is validated but not inserted (the table has its own
// auto-increment); provenance and the normalized health bucket come last.
func init() {
	boolCols := []string{
		"vert_other", "vert_pgrd", "vert_tgrd", "vert_wall",
		"horz_blck", "horz_grate", "horz_plant", "horz_other",
		"sidw_crack", "sidw_raise",
		"wire_htap", "wire_prime", "wire_2nd", "wire_other",
		"inf_canopy", "inf_guard", "inf_wires", "inf_paving", "inf_outlet", "inf_shoes",
		"inf_lights", "inf_other",
	}
	bools := make([]schema.Column, len(boolCols))
	for i, c := range boolCols {
		bools[i] = schema.Column{Name: c, Rule: schema.Rule{Kind: schema.Bool}}
	}

	register(&schema.Dataset{
		Name:       "trees_2005",
		Table:      "nyc_open_source_database_2005",
		SourcePath: "data/2005_street_tree_census.csv",
		BatchSize:  10000,
		Required: append([]string{
			"objectid", "cen_year", "tree_dbh", "address", "tree_loc", "pit_type", "soil_lvl",
			"status", "spc_latin", "spc_common",
		}, append(append([]string{}, boolCols...),
			"trunk_dmg", "zipcode", "zip_city", "cb_num", "borocode", "boroname",
			"cncldist", "st_assem", "st_senate", "nta", "nta_name", "boro_ct", "state",
			"latitude", "longitude", "x_sp", "y_sp", "objectid_1", "census_tract",
			"bin", "bbl", "location_1")...),
		Columns: concat(
			[]schema.Column{
				{Name: "cen_year", Rule: schema.Rule{Kind: schema.Int}},
				{Name: "tree_dbh", Rule: schema.Rule{Kind: schema.BoundedInt, Low: 0, High: 400}},
			},
			textCols("address", "tree_loc", "pit_type", "soil_lvl",
				"status", "spc_latin", "spc_common"),
			bools,
			[]schema.Column{
				text("trunk_dmg"),
				text("zipcode"),
				text("zip_city"),
				text("cb_num"),
				{Name: "borocode", Rule: schema.Rule{Kind: schema.Int}},
				text("boroname"),
				{Name: "cncldist", Rule: schema.Rule{Kind: schema.Int}},
				{Name: "st_assem", Rule: schema.Rule{Kind: schema.Int}},
				{Name: "st_senate", Rule: schema.Rule{Kind: schema.Int}},
			},
			textCols("nta", "nta_name", "boro_ct", "state"),
			[]schema.Column{
				{Name: "latitude", Rule: schema.Rule{Kind: schema.Decimal}},
				{Name: "longitude", Rule: schema.Rule{Kind: schema.Decimal}},
				{Name: "x_sp", Rule: schema.Rule{Kind: schema.Decimal}},
				{Name: "y_sp", Rule: schema.Rule{Kind: schema.Decimal}},
				{Name: "objectid_1", Rule: schema.Rule{Kind: schema.Int}},
				text("census_tract"),
				text("bin"),
				text("bbl"),
				text("location_1"),
				{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
				{Name: "health_3cat", Rule: schema.Rule{Kind: schema.Category, Source: "status", Vocab: legacyHealthVocab}},
			},
		),
		GroupChecks: []string{"health_3cat"},
	})
}
