package transform

import (
	"testing"

	"nycetl/internal/schema"
)

func treeDataset() *schema.Dataset {
	return &schema.Dataset{
		Name:      "trees_test",
		Table:     "trees_test",
		BatchSize: 100,
		Columns: []schema.Column{
			{Name: "tree_id", Rule: schema.Rule{Kind: schema.Int}},
			{Name: "tree_dbh", Rule: schema.Rule{Kind: schema.BoundedInt, High: 400}},
			{Name: "spc_common", Rule: schema.Rule{Kind: schema.Text}},
			{Name: "health_3cat", Rule: schema.Rule{
				Kind:   schema.Category,
				Source: "health",
				Vocab:  map[string]string{"good": "Good", "fair": "Fair", "poor": "Poor"},
			}},
			{Name: "curb_loc", Rule: schema.Rule{Kind: schema.Bool}},
			{Name: "created_at", Rule: schema.Rule{Kind: schema.Date}},
			{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
		},
	}
}

func TestApply_TreeRow(t *testing.T) {
	d := treeDataset()
	raw := map[string]string{
		"tree_id":    "180683",
		"tree_dbh":   "450",
		"spc_common": " red maple ",
		"health":     "Good",
		"curb_loc":   "Yes",
		"created_at": "8/27/2015",
	}
	rec, err := Apply(d, raw, "2015_trees.csv")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if rec["tree_id"] != int64(180683) {
		t.Fatalf("tree_id = %v", rec["tree_id"])
	}
	if rec["tree_dbh"] != nil {
		t.Fatalf("tree_dbh = %v; want nil (out of range)", rec["tree_dbh"])
	}
	if rec["spc_common"] != "red maple" {
		t.Fatalf("spc_common = %v", rec["spc_common"])
	}
	if rec["health_3cat"] != "Good" {
		t.Fatalf("health_3cat = %v", rec["health_3cat"])
	}
	if rec["curb_loc"] != int64(1) {
		t.Fatalf("curb_loc = %v", rec["curb_loc"])
	}
	if rec["created_at"] != "2015-08-27" {
		t.Fatalf("created_at = %v", rec["created_at"])
	}
	if rec["file_name"] != "2015_trees.csv" {
		t.Fatalf("file_name = %v", rec["file_name"])
	}
}

func TestApply_MissingSourceColumnBecomesNil(t *testing.T) {
	d := treeDataset()
	rec, err := Apply(d, map[string]string{"tree_id": "5"}, "f.csv")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if rec["spc_common"] != nil || rec["health_3cat"] != nil {
		t.Fatalf("absent cells = %v / %v; want nil", rec["spc_common"], rec["health_3cat"])
	}
}

func TestApply_DeriveHook(t *testing.T) {
	d := &schema.Dataset{
		Name: "derived_test", Table: "t", BatchSize: 1,
		Columns: []schema.Column{
			{Name: "monthly_anomaly", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "abs_monthly_temp", Rule: schema.Rule{Kind: schema.Derived}},
		},
		Derive: func(rec schema.Record) {
			if a, ok := rec["monthly_anomaly"].(float64); ok {
				rec["abs_monthly_temp"] = 2.23 + a
			}
		},
	}
	rec, err := Apply(d, map[string]string{"monthly_anomaly": "1.5"}, "")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, ok := rec["abs_monthly_temp"].(float64)
	if !ok || got < 3.729 || got > 3.731 {
		t.Fatalf("abs_monthly_temp = %v; want 3.73", rec["abs_monthly_temp"])
	}
}

func TestRow_InsertOrderWithGaps(t *testing.T) {
	d := treeDataset()
	rec := schema.Record{"tree_id": int64(7), "health_3cat": "Fair"}
	row := Row(d, rec)
	if len(row) != len(d.Columns) {
		t.Fatalf("row width = %d; want %d", len(row), len(d.Columns))
	}
	if row[0] != int64(7) || row[3] != "Fair" {
		t.Fatalf("row = %v", row)
	}
	if row[1] != nil || row[2] != nil {
		t.Fatalf("unset columns = %v, %v; want nil", row[1], row[2])
	}
}

func TestMissingRequired(t *testing.T) {
	d := &schema.Dataset{
		Name: "req", Table: "t", BatchSize: 1,
		Columns: []schema.Column{
			{Name: "year", Rule: schema.Rule{Kind: schema.Decimal}},
			{Name: "month", Rule: schema.Rule{Kind: schema.Decimal}},
		},
		RequireValues: []string{"year", "month"},
	}
	if MissingRequired(d, schema.Record{"year": 1900.0, "month": 1.0}) {
		t.Fatal("complete record reported missing")
	}
	if !MissingRequired(d, schema.Record{"year": 1900.0, "month": nil}) {
		t.Fatal("nil month not reported missing")
	}
	if !MissingRequired(d, schema.Record{"year": 1900.0}) {
		t.Fatal("absent month not reported missing")
	}
}

/*
TestDedupLast verifies keep-last semantics on the natural key: a later
occurrence replaces the earlier one, unkeyable records pass through, and
keyless datasets are untouched.
*/
func TestDedupLast(t *testing.T) {
	d := &schema.Dataset{
		Name: "cdo", Table: "t", BatchSize: 1,
		Columns: []schema.Column{
			{Name: "station", Rule: schema.Rule{Kind: schema.Text}},
			{Name: "month_start", Rule: schema.Rule{Kind: schema.MonthStart}},
			{Name: "tavg", Rule: schema.Rule{Kind: schema.Decimal}},
		},
		KeyColumns: []string{"station", "month_start"},
	}
	recs := []schema.Record{
		{"station": "USW00094728", "month_start": "2023-07-01", "tavg": 25.1},
		{"station": "USW00094728", "month_start": "2023-08-01", "tavg": 26.0},
		{"station": "USW00094728", "month_start": "2023-07-01", "tavg": 25.4},
		{"station": "USW00094728", "month_start": nil, "tavg": 20.0}, // unkeyable
	}
	out := DedupLast(d, recs)
	if len(out) != 3 {
		t.Fatalf("len(out) = %d; want 3", len(out))
	}
	var july float64
	for _, r := range out {
		if r["month_start"] == "2023-07-01" {
			july = r["tavg"].(float64)
		}
	}
	if july != 25.4 {
		t.Fatalf("july tavg = %v; want last occurrence 25.4", july)
	}

	// keyless dataset: untouched
	d2 := *d
	d2.KeyColumns = nil
	if got := DedupLast(&d2, recs); len(got) != len(recs) {
		t.Fatalf("keyless dedup changed length: %d", len(got))
	}
}
