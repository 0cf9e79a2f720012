package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"nycetl/internal/config"
	"nycetl/internal/dataset"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v: %v", args, err)
	}
	return out.String()
}

func TestDatasetsCommand(t *testing.T) {
	out := runCommand(t, "datasets")

	for _, want := range []string{"trees_2015", "cdo_monthly", "station,month_start"} {
		if !strings.Contains(out, want) {
			t.Fatalf("datasets output missing %q:\n%s", want, out)
		}
	}
	// insert-only datasets show no upsert key
	line := ""
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "heat_vulnerability") {
			line = l
		}
	}
	if line == "" || !strings.Contains(line, "-") {
		t.Fatalf("heat_vulnerability line = %q; want '-' for no upsert keys", line)
	}
}

func TestDDLCommand(t *testing.T) {
	out := runCommand(t, "ddl", "cdo_monthly")

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS `cdo_cgsm_monthly`",
		"UNIQUE KEY `uq_cdo_cgsm_monthly` (`station`, `month_start`)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("ddl output missing %q:\n%s", want, out)
		}
	}
}

/*
TestExtractPath verifies the resolution order: the --path flag wins, then the
per-dataset config override, then the data directory.
*/
func TestExtractPath(t *testing.T) {
	d, ok := dataset.Get("trees_2015")
	if !ok {
		t.Fatal("trees_2015 not registered")
	}
	cfg := config.Default()
	cfg.Data.Dir = "/srv/extracts"

	if got, want := extractPath(cfg, d), filepath.Join("/srv/extracts", filepath.Base(d.SourcePath)); got != want {
		t.Fatalf("default path = %q; want %q", got, want)
	}

	cfg.Data.Paths = map[string]string{"trees_2015": "/override/trees.csv"}
	if got := extractPath(cfg, d); got != "/override/trees.csv" {
		t.Fatalf("config override path = %q", got)
	}

	ingestPath = "/flag/trees.csv"
	defer func() { ingestPath = "" }()
	if got := extractPath(cfg, d); got != "/flag/trees.csv" {
		t.Fatalf("flag path = %q", got)
	}
}

func TestNewSource(t *testing.T) {
	if _, err := newSource("https://example.org/rows.csv"); err != nil {
		t.Fatalf("url source: %v", err)
	}
	if _, err := newSource("data/trees.csv"); err != nil {
		t.Fatalf("local source: %v", err)
	}
	// a manifest that does not exist is an error at selection time
	if _, err := newSource("missing/extracts.list"); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
