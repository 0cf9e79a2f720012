package dataset

import "nycetl/internal/schema"

// NOAA Climate Data Online monthly summaries arrive one CSV per station
// request, so the source path usually points at a directory. Rows key on
// (station, month_start); re-running a download must update in place, not
// duplicate, so the dataset upserts and collapses intra-run duplicates
// before batching. Rows without a station or a parseable period are useless
// and get dropped.
func init() {
	register(&schema.Dataset{
		Name:       "cdo_monthly",
		Table:      "cdo_cgsm_monthly",
		SourcePath: "data/cdo_monthly",
		BatchSize:  5000,
		Required: []string{
			"station", "name", "date", "cdsd", "emnt", "emxt", "hdsd",
			"tavg", "tmax", "tmin",
		},
		Columns: []schema.Column{
			text("station"),
			text("name"),
			{Name: "month_start", Rule: schema.Rule{Kind: schema.MonthStart, Source: "date"}},
			{Name: "cdsd", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "hdsd", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "emxt", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "emnt", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "tavg", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "tmax", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "tmin", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
		},
		KeyColumns:    []string{"station", "month_start"},
		UpdateColumns: []string{"name", "cdsd", "hdsd", "emxt", "emnt", "tavg", "tmax", "tmin", "file_name"},
		RequireValues: []string{"station", "month_start"},
		GroupChecks:   []string{"station"},
	})
}
