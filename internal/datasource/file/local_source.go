// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local is a filesystem data source bound to one path. The path may name a
// single extract or a directory of same-schema extracts (the NOAA station
// downloads arrive as one CSV per request).
type Local struct{ path string }

// NewLocal returns a new Local data source bound to the provided path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Resolve expands the configured path into the ordered list of CSV files to
// ingest. A plain file resolves to itself; a directory resolves to its *.csv
// entries sorted by name so repeated runs visit files in a stable order.
func (l *Local) Resolve() ([]string, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", l.path, err)
	}
	if !info.IsDir() {
		return []string{l.path}, nil
	}
	entries, err := os.ReadDir(l.path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", l.path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			files = append(files, filepath.Join(l.path, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no csv files in %s", l.path)
	}
	sort.Strings(files)
	return files, nil
}

// Open opens one resolved file for reading.
//
// Behavior:
//   - If the context is already canceled or its deadline exceeded at the time
//     of the call, Open returns the context error immediately without touching
//     the filesystem.
//   - Any filesystem error is wrapped with the path for context, while still
//     permitting errors.Is/As checks by callers (e.g., errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
