// Package storage defines the backend-agnostic repository contract for the
// ingestion pipeline and the factory that concrete backends register
// themselves with. The pipeline only ever sees this interface; which engine
// actually holds the tables is a configuration detail.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config is the backend-neutral connection and table description handed to a
// registered factory.
type Config struct {
	// Kind selects the registered backend ("mysql", "postgres", "sqlite",
	// "mssql").
	Kind string

	// DSN is the backend-specific connection string.
	DSN string

	// Table is the target table.
	Table string

	// Columns is the insert-ordered column list.
	Columns []string

	// KeyColumns names the natural key for upserting backends. Empty means
	// insert-only.
	KeyColumns []string

	// UpdateColumns lists the columns rewritten on key conflict.
	UpdateColumns []string
}

// Repository is the storage contract the pipeline loads through. One
// InsertBatch call is one transaction: either every row in the batch lands or
// none do.
type Repository interface {
	// InsertBatch writes one batch of insert-ordered rows inside a single
	// transaction and returns the number of rows written.
	InsertBatch(ctx context.Context, rows [][]any) (int64, error)

	// Count returns the total row count of the configured table.
	Count(ctx context.Context) (int64, error)

	// GroupCount returns the value distribution of one column. SQL NULL
	// appears under the "NULL" key.
	GroupCount(ctx context.Context, column string) (map[string]int64, error)

	// Exec runs an arbitrary statement (typically DDL).
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connection pool.
	Close()
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu    sync.RWMutex
	registry = map[string]Factory{}
)

// Register makes a backend available under the given kind. Backends call this
// from init; a duplicate kind panics because it is a wiring bug, not a
// runtime condition.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("storage: backend %q registered twice", kind))
	}
	registry[kind] = f
}

// New opens a Repository of the configured kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := registry[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown backend %q (have: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered backend kinds in sorted order.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
