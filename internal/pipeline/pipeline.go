// Package pipeline runs one dataset end to end: read the extract(s), check
// the header contract, convert rows, derive and dedup, batch-insert through a
// storage.Repository, and verify what landed. The run is deliberately
// sequential; the batch commit order is part of the failure contract (an
// aborted run leaves a clean prefix of committed batches, never holes).
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"nycetl/internal/metrics"
	"nycetl/internal/parser/csv"
	"nycetl/internal/schema"
	"nycetl/internal/storage"
	"nycetl/internal/transform"
)

// Source yields the extract files for one run. *file.Local and
// *httpds.Remote are the production implementations.
type Source interface {
	Resolve() ([]string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// fileNamer lets a source override the provenance label recorded with each
// row. Without it the label is the path's base name.
type fileNamer interface {
	FileName(path string) string
}

// Stats summarizes one completed run.
type Stats struct {
	Files        int
	RowsRead     int
	RowsDropped  int // failed a required-value check
	RowsDeduped  int // collapsed into a later occurrence of the same key
	RowsInserted int64
	Batches      int
	Verify       *VerifyResult
}

// record reports the run's row and batch counts to the metrics backend.
func (s *Stats) record(dataset string) {
	metrics.RecordRows(dataset, "read", int64(s.RowsRead))
	metrics.RecordRows(dataset, "dropped", int64(s.RowsDropped))
	metrics.RecordRows(dataset, "deduped", int64(s.RowsDeduped))
	metrics.RecordRows(dataset, "inserted", s.RowsInserted)
	metrics.RecordBatches(dataset, int64(s.Batches))
}

// VerifyResult is the post-load report.
type VerifyResult struct {
	// Total is the table row count after the run.
	Total int64
	// Groups maps each configured check column to its value distribution.
	Groups map[string]map[string]int64
}

// Run ingests one dataset. It returns the stats of the completed run or the
// first fatal error; batches committed before a failure stay committed.
func Run(ctx context.Context, d *schema.Dataset, repo storage.Repository, src Source, log zerolog.Logger) (*Stats, error) {
	if err := d.Check(); err != nil {
		return nil, err
	}
	log = log.With().Str("dataset", d.Name).Logger()

	files, err := src.Resolve()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Files: len(files)}
	var recs []schema.Record
	for _, path := range files {
		n, err := readFile(ctx, d, src, path, &recs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		stats.RowsRead += n
		log.Info().Str("file", filepath.Base(path)).Int("rows", n).Msg("extract read")
	}

	if d.Finalize != nil {
		d.Finalize(recs)
	}

	kept := recs[:0]
	for _, rec := range recs {
		if transform.MissingRequired(d, rec) {
			stats.RowsDropped++
			continue
		}
		kept = append(kept, rec)
	}
	recs = kept
	if stats.RowsDropped > 0 {
		log.Warn().Int("dropped", stats.RowsDropped).Msg("rows missing required values")
	}

	before := len(recs)
	recs = transform.DedupLast(d, recs)
	stats.RowsDeduped = before - len(recs)
	if stats.RowsDeduped > 0 {
		log.Info().Int("deduped", stats.RowsDeduped).Msg("intra-run duplicates collapsed")
	}

	rows := make([][]any, len(recs))
	for i, rec := range recs {
		rows[i] = transform.Row(d, rec)
	}

	batches := Batch(rows, d.BatchSize)
	stats.Batches = len(batches)
	start := time.Now()
	for i, batch := range batches {
		n, err := repo.InsertBatch(ctx, batch)
		stats.RowsInserted += n
		if err != nil {
			log.Error().Err(err).
				Int("batch", i+1).
				Int("batches", len(batches)).
				Msg("batch failed; run aborted")
			stats.record(d.Name)
			return stats, err
		}
		elapsed := time.Since(start)
		rps := int64(0)
		if secs := elapsed.Seconds(); secs > 0 {
			rps = int64(float64(stats.RowsInserted) / secs)
		}
		log.Info().
			Int("batch", i+1).
			Int("batches", len(batches)).
			Int64("inserted", n).
			Str("total_inserted", humanize.Comma(stats.RowsInserted)).
			Int64("rps", rps).
			Str("elapsed", elapsed.Round(time.Millisecond).String()).
			Msg("batch committed")
	}

	stats.record(d.Name)

	verify, err := runVerify(ctx, d, repo)
	if err != nil {
		return stats, err
	}
	stats.Verify = verify
	log.Info().
		Str("table", d.Table).
		Str("total", humanize.Comma(verify.Total)).
		Msg("load verified")
	for col, dist := range verify.Groups {
		log.Info().Str("column", col).Interface("distribution", dist).Msg("value distribution")
	}
	return stats, nil
}

// readFile reads, header-checks, and converts one extract, appending its
// typed records to out. Returns the number of records appended.
func readFile(ctx context.Context, d *schema.Dataset, src Source, path string, out *[]schema.Record) (int, error) {
	rc, err := src.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	header, raws, err := csv.ReadAll(ctx, rc, csv.Options{
		Positional:      d.Positional,
		SkipUntilPrefix: d.SkipUntilPrefix,
	})
	if err != nil {
		return 0, err
	}
	if err := csv.CheckColumns(header, d.Required); err != nil {
		return 0, err
	}

	fileName := filepath.Base(path)
	if fn, ok := src.(fileNamer); ok {
		fileName = fn.FileName(path)
	}
	for _, raw := range raws {
		rec, err := transform.Apply(d, raw, fileName)
		if err != nil {
			return 0, err
		}
		*out = append(*out, rec)
	}
	return len(raws), nil
}

// runVerify reads back the table count and the configured distributions.
func runVerify(ctx context.Context, d *schema.Dataset, repo storage.Repository) (*VerifyResult, error) {
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify count: %w", err)
	}
	out := &VerifyResult{Total: total}
	if len(d.GroupChecks) > 0 {
		out.Groups = make(map[string]map[string]int64, len(d.GroupChecks))
		for _, col := range d.GroupChecks {
			dist, err := repo.GroupCount(ctx, col)
			if err != nil {
				return nil, fmt.Errorf("verify %s distribution: %w", col, err)
			}
			out.Groups[col] = dist
		}
	}
	return out, nil
}
