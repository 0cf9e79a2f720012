package dataset

import (
	"nycetl/internal/convert"
	"nycetl/internal/schema"
)

// Baselines for the Berkeley Earth North America series. The published file
// carries anomalies relative to the 1951–1980 mean; absolute temperatures
// are reconstructed by adding the baseline back.
const berkeleyBaselineGlobal = 2.23

var berkeleyMonthBaselines = map[int]float64{
	1: -11.90, 2: -9.79, 3: -5.83, 4: 0.98,
	5: 8.04, 6: 13.45, 7: 16.23, 8: 15.04,
	9: 10.23, 10: 3.67, 11: -3.75, 12: -9.64,
}

// The smoothed anomaly columns that reconstruct against the global baseline,
// paired with their absolute-temperature targets.
var berkeleySmoothed = [][2]string{
	{"annual_anomaly", "abs_annual_temp"},
	{"fiveyear_anomaly", "abs_5y_temp"},
	{"tenyear_anomaly", "abs_10y_temp"},
	{"twentyyear_anomaly", "abs_20y_temp"},
}

// The °C columns mirrored into °F.
var berkeleyFahrenheit = [][2]string{
	{"abs_monthly_temp", "abs_monthly_temp_f"},
	{"abs_annual_temp", "abs_annual_temp_f"},
	{"abs_5y_temp", "abs_5y_temp_f"},
	{"abs_10y_temp", "abs_10y_temp_f"},
	{"abs_20y_temp", "abs_20y_temp_f"},
	{"yearly_mean_temp", "yearly_mean_temp_f"},
}

// The Berkeley Earth file opens with a free-text preamble; the data header is
// the first line starting with "Year", and its column names are unusable, so
// the twelve data columns are bound by position. Rows without a numeric year
// and month are metadata and get dropped. The calendar-year mean of the
// absolute monthly temperatures needs the whole series, so it runs as a
// Finalize pass.
func init() {
	derived := func(name string) schema.Column {
		return schema.Column{Name: name, Rule: schema.Rule{Kind: schema.Derived}}
	}
	dec := func(name string) schema.Column {
		return schema.Column{Name: name, Rule: schema.Rule{Kind: schema.Decimal}}
	}

	register(&schema.Dataset{
		Name:       "berkeley_earth",
		Table:      "berkeley_earth_north_america",
		SourcePath: "data/berkeley_earth_temperature.csv",
		BatchSize:  10000,
		Positional: []string{
			"year", "month",
			"monthly_anomaly", "monthly_uncertainty",
			"annual_anomaly", "annual_uncertainty",
			"fiveyear_anomaly", "fiveyear_uncertainty",
			"tenyear_anomaly", "tenyear_uncertainty",
			"twentyyear_anomaly", "twentyyear_uncertainty",
		},
		SkipUntilPrefix: "Year",
		RequireValues:   []string{"year", "month"},
		Columns: []schema.Column{
			dec("year"), dec("month"),
			dec("monthly_anomaly"), dec("monthly_uncertainty"),
			dec("annual_anomaly"), dec("annual_uncertainty"),
			dec("fiveyear_anomaly"), dec("fiveyear_uncertainty"),
			dec("tenyear_anomaly"), dec("tenyear_uncertainty"),
			dec("twentyyear_anomaly"), dec("twentyyear_uncertainty"),
			derived("abs_monthly_temp"), derived("abs_annual_temp"),
			derived("abs_5y_temp"), derived("abs_10y_temp"), derived("abs_20y_temp"),
			derived("yearly_mean_temp"),
			derived("abs_monthly_temp_f"), derived("abs_annual_temp_f"),
			derived("abs_5y_temp_f"), derived("abs_10y_temp_f"), derived("abs_20y_temp_f"),
			derived("yearly_mean_temp_f"),
			{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
		},
		Derive:   berkeleyDerive,
		Finalize: berkeleyFinalize,
	})
}

// berkeleyDerive reconstructs the absolute °C temperatures for one record.
func berkeleyDerive(rec schema.Record) {
	if a, ok := rec["monthly_anomaly"].(float64); ok {
		if m, ok := rec["month"].(float64); ok {
			if base, ok := berkeleyMonthBaselines[int(m)]; ok {
				rec["abs_monthly_temp"] = base + a
			}
		}
	}
	for _, p := range berkeleySmoothed {
		if a, ok := rec[p[0]].(float64); ok {
			rec[p[1]] = berkeleyBaselineGlobal + a
		}
	}
}

// berkeleyFinalize computes the calendar-year mean of the absolute monthly
// temperatures and then fills every °F mirror column.
func berkeleyFinalize(recs []schema.Record) {
	sums := map[float64]float64{}
	counts := map[float64]int{}
	for _, rec := range recs {
		y, ok := rec["year"].(float64)
		if !ok {
			continue
		}
		if t, ok := rec["abs_monthly_temp"].(float64); ok {
			sums[y] += t
			counts[y]++
		}
	}

	for _, rec := range recs {
		if y, ok := rec["year"].(float64); ok {
			if n := counts[y]; n > 0 {
				rec["yearly_mean_temp"] = sums[y] / float64(n)
			}
		}
		for _, p := range berkeleyFahrenheit {
			if c, ok := rec[p[0]].(float64); ok {
				rec[p[1]] = convert.CToF(c)
			}
		}
	}
}
