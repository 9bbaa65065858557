// Package storage contains the storage-agnostic persistence contract and the
// factory through which concrete backends are selected at runtime.
//
// Backends (postgres, mysql, mssql, sqlite, memory) register a constructor in
// their init() functions; importing internal/storage/all (even blank) makes
// every built-in kind available. Callers then open a Repository via New and
// remain fully backend-agnostic.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the bulk persistence capability the ingestion pipeline
// writes through.
//
// InsertIgnore performs one bulk write with insert-if-absent semantics: rows
// whose uniqueness key already exists in the store are silently skipped. It
// returns the number of rows actually newly written. An empty rows slice is a
// zero-cost no-op. Rows are aligned to the columns order; a nil cell persists
// as NULL.
type Repository interface {
	InsertIgnore(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config carries everything a backend needs to open a Repository.
type Config struct {
	Kind       string   // registered backend kind, e.g. "postgres"
	DSN        string   // backend connection string
	Table      string   // fully qualified target table
	KeyColumns []string // uniqueness key enforced by the insert-if-absent write
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. It is
// typically called from backend packages' init() functions; tests may
// re-register a kind to inject fakes.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository for cfg.Kind via the registered factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
