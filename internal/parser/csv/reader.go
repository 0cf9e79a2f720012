// Package csv reads one open-data extract into memory as raw text records.
//
// The reader is deliberately whole-file: the extracts are bounded municipal
// snapshots (the largest is under a million rows) and several datasets need
// whole-set passes (dedup, yearly aggregation) before anything touches the
// database. Header names are normalized once on read so every later stage can
// address cells by canonical name.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SchemaMismatchError reports required source columns absent from the header.
// It is fatal: the run aborts before any row is converted or inserted.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("source file is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// NormalizeHeader canonicalizes one header cell: trim, lowercase, and spaces
// to underscores. The function is idempotent, so already-normalized names pass
// through unchanged.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// CheckColumns verifies that every required (normalized) column is present in
// the normalized header. All absences are collected into one error so the
// operator sees the full gap, not the first one.
func CheckColumns(header, required []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[NormalizeHeader(h)] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[NormalizeHeader(r)]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &SchemaMismatchError{Missing: missing}
}

// Options tunes how one extract is read.
type Options struct {
	// Positional, when non-empty, discards the header row's names and binds
	// the first len(Positional) cells of every data row to these names in
	// order. Extra cells are ignored.
	Positional []string

	// SkipUntilPrefix, when non-empty, drops leading lines until one whose
	// trimmed form starts with the prefix; that line becomes the header row.
	SkipUntilPrefix string
}

// ReadAll parses the extract into normalized-header raw records. Cells are
// left as text; typed conversion is a later stage. A UTF-8 BOM at the start
// of the stream is stripped transparently.
func ReadAll(ctx context.Context, r io.Reader, opt Options) (header []string, rows []map[string]string, err error) {
	// BOM-tolerant decode. The city portal exports routinely carry a UTF-8
	// BOM that would otherwise glue itself onto the first header name.
	dec := unicode.UTF8BOM.NewDecoder()
	in := transform.NewReader(r, unicode.BOMOverride(dec))

	src, err := skipPreamble(in, opt.SkipUntilPrefix)
	if err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	rawHeader, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("empty input: no header row")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	if len(opt.Positional) > 0 {
		header = append(header, opt.Positional...)
	} else {
		header = make([]string, len(rawHeader))
		for i, h := range rawHeader {
			header[i] = NormalizeHeader(h)
		}
	}

	line := 1
	for {
		if line%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			default:
			}
		}
		rec, err := cr.Read()
		if err == io.EOF {
			return header, rows, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
}

// skipPreamble consumes lines until one whose trimmed form starts with prefix
// and returns a reader that replays that line followed by the remainder. An
// empty prefix is a no-op.
func skipPreamble(r io.Reader, prefix string) (io.Reader, error) {
	if prefix == "" {
		return r, nil
	}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return io.MultiReader(strings.NewReader(line), br), nil
		}
		if err == io.EOF {
			return nil, fmt.Errorf("no line starting with %q found before end of input", prefix)
		}
		if err != nil {
			return nil, fmt.Errorf("scan preamble: %w", err)
		}
	}
}
