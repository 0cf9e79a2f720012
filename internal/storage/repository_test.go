package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type nopRepo struct{}

func (nopRepo) InsertBatch(context.Context, [][]any) (int64, error)       { return 0, nil }
func (nopRepo) Count(context.Context) (int64, error)                      { return 0, nil }
func (nopRepo) GroupCount(context.Context, string) (map[string]int64, error) { return nil, nil }
func (nopRepo) Exec(context.Context, string) error                        { return nil }
func (nopRepo) Close()                                                    {}

func TestFactoryRegisterAndNew(t *testing.T) {
	Register("fake-engine", func(ctx context.Context, cfg Config) (Repository, error) {
		if cfg.Table != "t" {
			return nil, fmt.Errorf("unexpected table %q", cfg.Table)
		}
		return nopRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake-engine", Table: "t"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if repo == nil {
		t.Fatal("New returned nil repository")
	}

	if _, err := New(context.Background(), Config{Kind: "no-such-engine"}); err == nil {
		t.Fatal("New with unknown kind = nil error; want failure")
	}

	found := false
	for _, k := range ListKinds() {
		if k == "fake-engine" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ListKinds() = %v; want fake-engine present", ListKinds())
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Register did not panic")
		}
	}()
	Register("dup-engine", func(context.Context, Config) (Repository, error) { return nopRepo{}, nil })
	Register("dup-engine", func(context.Context, Config) (Repository, error) { return nopRepo{}, nil })
}

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")
	err := &Error{Kind: ErrAuth, Backend: "mysql", Op: "ping", Err: base}

	if KindOf(err) != ErrAuth {
		t.Fatalf("KindOf = %v; want ErrAuth", KindOf(err))
	}
	if KindOf(fmt.Errorf("wrapped: %w", err)) != ErrAuth {
		t.Fatal("KindOf through wrapping lost the classification")
	}
	if KindOf(base) != ErrUnknown {
		t.Fatalf("KindOf(plain) = %v; want ErrUnknown", KindOf(base))
	}
	if !errors.Is(err, base) {
		t.Fatal("Unwrap chain broken")
	}
}
