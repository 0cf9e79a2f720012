package dataset

import "nycetl/internal/schema"

// The 2015 census is the cleanest of the three: the table mirrors the
// extract almost column for column, so nearly everything passes through as
// text. Only the survey date (multiple US layouts) and the health bucket
// need conversion.
func init() {
	register(&schema.Dataset{
		Name:       "trees_2015",
		Table:      "nyc_open_source_database_2015",
		SourcePath: "data/2015_street_tree_census.csv",
		BatchSize:  10000,
		Required: []string{
			"tree_id", "block_id", "created_at", "tree_dbh", "stump_diam",
			"curb_loc", "status", "health",
			"spc_latin", "spc_common", "steward",
			"guards", "sidewalk", "user_type", "problems", "root_stone",
			"root_grate", "root_other", "trunk_wire", "trnk_light",
			"trnk_other", "brch_light", "brch_shoe", "brch_other", "address",
			"postcode", "zip_city", "community_board", "borocode",
			"borough", "cncldist", "st_assem", "st_senate", "nta",
			"nta_name", "boro_ct", "state", "latitude", "longitude", "x_sp", "y_sp",
			"council_district", "census_tract", "bin", "bbl",
		},
		Columns: concat(
			textCols("tree_id", "block_id"),
			[]schema.Column{
				{Name: "created_at", Rule: schema.Rule{Kind: schema.Date}},
			},
			textCols("tree_dbh", "stump_diam", "curb_loc", "status", "health"),
			[]schema.Column{
				{Name: "health_3cat", Rule: schema.Rule{Kind: schema.Category, Source: "health", Vocab: modernHealthVocab}},
			},
			textCols("spc_latin", "spc_common", "steward",
				"guards", "sidewalk", "user_type", "problems", "root_stone",
				"root_grate", "root_other", "trunk_wire", "trnk_light",
				"trnk_other", "brch_light", "brch_shoe", "brch_other", "address",
				"postcode", "zip_city", "community_board", "borocode",
				"borough", "cncldist", "st_assem", "st_senate", "nta",
				"nta_name", "boro_ct", "state", "latitude", "longitude", "x_sp", "y_sp",
				"council_district", "census_tract", "bin", "bbl"),
			[]schema.Column{
				{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
			},
		),
		GroupChecks: []string{"health_3cat"},
	})
}
