package dataset

import "nycetl/internal/schema"

// The air quality surveillance extract reports indicators against free-text
// place names. Two columns are inferred rather than read: the normalized
// borough and the geographic level of the place name. The number of rows
// left in the Unknown borough bucket is the post-load sanity signal.
//
// geo_type_id is sourced from the extract's geo_join_id column; the portal
// renamed it between vintages and the table kept the old name.
func init() {
	register(&schema.Dataset{
		Name:       "air_quality",
		Table:      "nyc_open_source_database_air_quality",
		SourcePath: "data/air_quality.csv",
		BatchSize:  1000,
		Required: []string{
			"unique_id", "indicator_id", "name", "measure", "measure_info",
			"geo_type_name", "geo_join_id", "geo_place_name", "time_period",
			"start_date", "data_value", "message",
		},
		Columns: []schema.Column{
			{Name: "unique_id", Rule: schema.Rule{Kind: schema.Int}},
			{Name: "indicator_id", Rule: schema.Rule{Kind: schema.Int}},
			text("name"),
			text("measure"),
			text("measure_info"),
			text("geo_type_name"),
			{Name: "geo_type_id", Rule: schema.Rule{Kind: schema.Int, Source: "geo_join_id"}},
			text("geo_place_name"),
			{Name: "borough_norm_air", Rule: schema.Rule{Kind: schema.Borough, Source: "geo_place_name"}},
			{Name: "geo_level", Rule: schema.Rule{Kind: schema.GeoLevel, Source: "geo_place_name"}},
			text("time_period"),
			{Name: "start_date", Rule: schema.Rule{Kind: schema.Date}},
			{Name: "data_value", Rule: schema.Rule{Kind: schema.Decimal}},
			text("message"),
			{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
		},
		GroupChecks: []string{"borough_norm_air"},
	})
}
