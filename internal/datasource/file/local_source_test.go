package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLocalOpen covers success, missing file, and pre-canceled context.
// Table-driven to make behavior clear and extensible.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	type tc struct {
		name            string
		prepare         func(t *testing.T) string // returns path to open
		makeCtx         func(t *testing.T) context.Context
		wantErrIs       error  // checked via errors.Is
		wantErrContains string // substring expected in error message
		wantContent     string // if non-empty, verifies read content on success
	}

	cases := []tc{
		{
			name: "success_reads_content",
			prepare: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				p := filepath.Join(dir, "data.csv")
				const payload = "a,b\n1,2"
				if err := os.WriteFile(p, []byte(payload), 0o644); err != nil {
					t.Fatalf("write test file: %v", err)
				}
				return p
			},
			makeCtx:     func(t *testing.T) context.Context { return context.Background() },
			wantContent: "a,b\n1,2",
		},
		{
			name: "missing_file",
			prepare: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(t.TempDir(), "nope.csv")
			},
			makeCtx:         func(t *testing.T) context.Context { return context.Background() },
			wantErrIs:       os.ErrNotExist,
			wantErrContains: "open ",
		},
		{
			name: "pre_canceled_context",
			prepare: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				p := filepath.Join(dir, "data.csv")
				if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
					t.Fatalf("write test file: %v", err)
				}
				return p
			},
			makeCtx: func(t *testing.T) context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErrIs: context.Canceled,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			path := c.prepare(t)
			src := NewLocal(path)
			rc, err := src.Open(c.makeCtx(t), path)

			if c.wantErrIs != nil || c.wantErrContains != "" {
				if err == nil {
					t.Fatalf("Open = nil error; want failure")
				}
				if c.wantErrIs != nil && !errors.Is(err, c.wantErrIs) {
					t.Fatalf("Open error = %v; want errors.Is(%v)", err, c.wantErrIs)
				}
				if c.wantErrContains != "" && !strings.Contains(err.Error(), c.wantErrContains) {
					t.Fatalf("Open error = %q; want substring %q", err.Error(), c.wantErrContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != c.wantContent {
				t.Fatalf("content = %q; want %q", got, c.wantContent)
			}
		})
	}
}

/*
TestLocalResolve verifies path expansion: a plain file resolves to itself, a
directory resolves to its *.csv entries in sorted order, and non-CSV entries
are ignored.
*/
func TestLocalResolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b_station.csv", "a_station.CSV", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	files, err := NewLocal(dir).Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Resolve returned %d files; want 2: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a_station.CSV" || filepath.Base(files[1]) != "b_station.csv" {
		t.Fatalf("Resolve order = %v; want sorted [a_station.CSV b_station.csv]", files)
	}

	single := filepath.Join(dir, "notes.txt")
	files, err = NewLocal(single).Resolve()
	if err != nil {
		t.Fatalf("Resolve(file): %v", err)
	}
	if len(files) != 1 || files[0] != single {
		t.Fatalf("Resolve(file) = %v; want [%s]", files, single)
	}

	empty := t.TempDir()
	if _, err := NewLocal(empty).Resolve(); err == nil {
		t.Fatal("Resolve(empty dir) = nil error; want failure")
	}
}
