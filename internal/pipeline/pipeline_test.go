package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"nycetl/internal/parser/csv"
	"nycetl/internal/schema"
	"nycetl/internal/storage"

	_ "nycetl/internal/storage/sqlite"
)

// memSource serves in-memory extracts keyed by file name.
type memSource struct {
	files map[string]string
}

func (m *memSource) Resolve() ([]string, error) {
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (m *memSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	body, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file %s", path)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

// recordingRepo counts calls and optionally fails a chosen batch.
type recordingRepo struct {
	batches     [][][]any
	failAtBatch int // 1-based; 0 disables
	countCalls  int
}

func (r *recordingRepo) InsertBatch(_ context.Context, rows [][]any) (int64, error) {
	if r.failAtBatch > 0 && len(r.batches)+1 == r.failAtBatch {
		return 0, errors.New("batch write refused")
	}
	r.batches = append(r.batches, rows)
	return int64(len(rows)), nil
}

func (r *recordingRepo) Count(context.Context) (int64, error) {
	r.countCalls++
	var n int64
	for _, b := range r.batches {
		n += int64(len(b))
	}
	return n, nil
}

func (r *recordingRepo) GroupCount(context.Context, string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (r *recordingRepo) Exec(context.Context, string) error { return nil }
func (r *recordingRepo) Close()                             {}

func testTreeDataset() *schema.Dataset {
	return &schema.Dataset{
		Name:      "trees_mini",
		Table:     "trees_mini",
		BatchSize: 2,
		Required:  []string{"tree_id", "health", "boroname"},
		Columns: []schema.Column{
			{Name: "tree_id", Rule: schema.Rule{Kind: schema.Int}},
			{Name: "health_3cat", Rule: schema.Rule{
				Kind: schema.Category, Source: "health",
				Vocab: map[string]string{"good": "Good", "fair": "Fair", "poor": "Poor"},
			}},
			{Name: "region", Rule: schema.Rule{Kind: schema.Borough, Source: "boroname"}},
			{Name: "file_name", Rule: schema.Rule{Kind: schema.Provenance}},
		},
		GroupChecks: []string{"health_3cat"},
	}
}

const treeCSV = "Tree ID,Health,BoroName\n" +
	"1,Good,Park Slope\n" +
	"2,Poor,Queens\n" +
	"3,Fair,Brooklyn\n" +
	"4,bogus,Nowhere Place\n" +
	"5,Good,Manhattan\n"

func TestRun_BatchesAndStats(t *testing.T) {
	d := testTreeDataset()
	repo := &recordingRepo{}
	src := &memSource{files: map[string]string{"trees.csv": treeCSV}}

	stats, err := Run(context.Background(), d, repo, src, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.RowsRead != 5 || stats.RowsInserted != 5 {
		t.Fatalf("stats = %+v; want 5 read, 5 inserted", stats)
	}
	// 5 rows at batch size 2 → ceil(5/2) = 3 transactions
	if stats.Batches != 3 || len(repo.batches) != 3 {
		t.Fatalf("batches = %d (repo saw %d); want 3", stats.Batches, len(repo.batches))
	}
	if stats.Verify == nil || stats.Verify.Total != 5 {
		t.Fatalf("verify = %+v; want total 5", stats.Verify)
	}

	// spot-check conversions landed in insert order
	first := repo.batches[0][0]
	if first[0] != int64(1) || first[1] != "Good" || first[2] != "Brooklyn" || first[3] != "trees.csv" {
		t.Fatalf("first row = %v", first)
	}
	// unknown health label degraded to NULL, unknown place to the sentinel
	fourth := repo.batches[1][1]
	if fourth[1] != nil || fourth[2] != "Unknown" {
		t.Fatalf("fourth row = %v; want nil health and Unknown region", fourth)
	}
}

/*
TestRun_MissingColumnAbortsBeforeWrite pins the header contract: a required
column absent from the extract fails the run with a schema mismatch naming
the column, and the repository never sees a batch.
*/
func TestRun_MissingColumnAbortsBeforeWrite(t *testing.T) {
	d := testTreeDataset()
	repo := &recordingRepo{}
	src := &memSource{files: map[string]string{
		"trees.csv": "Tree ID,BoroName\n1,Queens\n",
	}}

	_, err := Run(context.Background(), d, repo, src, zerolog.Nop())
	var sm *csv.SchemaMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("Run error = %v; want *csv.SchemaMismatchError", err)
	}
	if len(sm.Missing) != 1 || sm.Missing[0] != "health" {
		t.Fatalf("Missing = %v; want [health]", sm.Missing)
	}
	if len(repo.batches) != 0 {
		t.Fatalf("repository saw %d batches; want 0", len(repo.batches))
	}
}

/*
TestRun_MidRunFailureKeepsCommittedPrefix verifies the failure contract:
when a later batch fails, earlier batches stay committed, the run reports
the error, and verification never runs.
*/
func TestRun_MidRunFailureKeepsCommittedPrefix(t *testing.T) {
	d := testTreeDataset()
	repo := &recordingRepo{failAtBatch: 2}
	src := &memSource{files: map[string]string{"trees.csv": treeCSV}}

	stats, err := Run(context.Background(), d, repo, src, zerolog.Nop())
	if err == nil {
		t.Fatal("Run = nil error; want batch failure")
	}
	if len(repo.batches) != 1 {
		t.Fatalf("committed batches = %d; want 1 (the prefix)", len(repo.batches))
	}
	if stats.RowsInserted != 2 {
		t.Fatalf("RowsInserted = %d; want 2", stats.RowsInserted)
	}
	if repo.countCalls != 0 {
		t.Fatal("verification ran after a failed batch")
	}
	if stats.Verify != nil {
		t.Fatal("stats carry a verify result after a failed run")
	}
}

func TestRun_RejectsMisconfiguredDataset(t *testing.T) {
	d := testTreeDataset()
	d.BatchSize = 0
	_, err := Run(context.Background(), d, &recordingRepo{}, &memSource{}, zerolog.Nop())
	if err == nil {
		t.Fatal("Run accepted a zero batch size")
	}
}

/*
TestRun_EndToEndSQLite drives the full path against a real embedded engine:
DDL, conversion, batched insert, and read-back verification.
*/
func TestRun_EndToEndSQLite(t *testing.T) {
	ctx := context.Background()
	d := testTreeDataset()

	repo, err := storage.New(ctx, storage.Config{
		Kind:    "sqlite",
		DSN:     ":memory:",
		Table:   d.Table,
		Columns: []string{"tree_id", "health_3cat", "region", "file_name"},
	})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer repo.Close()
	ddl := "CREATE TABLE trees_mini (tree_id INTEGER, health_3cat TEXT, region TEXT, file_name TEXT)"
	if err := repo.Exec(ctx, ddl); err != nil {
		t.Fatalf("ddl: %v", err)
	}

	src := &memSource{files: map[string]string{"2015_trees.csv": treeCSV}}
	stats, err := Run(ctx, d, repo, src, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Verify.Total != 5 {
		t.Fatalf("total = %d; want 5", stats.Verify.Total)
	}
	dist := stats.Verify.Groups["health_3cat"]
	if dist["Good"] != 2 || dist["Fair"] != 1 || dist["Poor"] != 1 || dist["NULL"] != 1 {
		t.Fatalf("health distribution = %v", dist)
	}
}
