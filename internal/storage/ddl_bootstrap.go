package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/hristo-banchev/terraloc-ingest/internal/schema"
)

// DDLBootstrapper is a backend-specific function that derives a table
// definition from the schema contract and applies the appropriate DDL via
// repo.Exec (typically CREATE TABLE ... plus the uniqueness constraint the
// insert-if-absent write relies on).
//
// Backends register their implementation for a given storage kind at init
// time.
type DDLBootstrapper func(ctx context.Context, repo Repository, cfg Config, c *schema.Contract) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given
// storage kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for cfg.Kind and invokes it.
// Callers do not need to know which backend they are using.
func EnsureTable(ctx context.Context, repo Repository, cfg Config, c *schema.Contract) error {
	ddlMu.RLock()
	fn, ok := ddlFns[cfg.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", cfg.Kind)
	}
	return fn(ctx, repo, cfg, c)
}
