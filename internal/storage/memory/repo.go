// Package memory implements an in-process storage.Repository. It exists for
// dry runs and tests: writes are kept in a map keyed by an xxh3 hash of the
// configured key columns, which gives the same insert-if-absent observable
// behavior as the database backends without a server.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/hristo-banchev/terraloc-ingest/internal/storage"
)

// Repository is an in-memory implementation of storage.Repository. Safe for
// concurrent use.
type Repository struct {
	mu         sync.Mutex
	keyColumns []string
	rows       map[uint64][]any
	order      []uint64

	// FailWith, when set, makes the next InsertIgnore call return the error
	// instead of writing. Tests use it to simulate store-level outages.
	FailWith error
}

// New returns an empty repository enforcing uniqueness over keyColumns. With
// no key columns, the whole row acts as the key.
func New(keyColumns []string) *Repository {
	return &Repository{
		keyColumns: keyColumns,
		rows:       map[uint64][]any{},
	}
}

// InsertIgnore implements storage.Repository. Rows whose key hash is already
// present are skipped; the count of newly stored rows is returned.
func (r *Repository) InsertIgnore(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		err := r.FailWith
		return 0, err
	}

	keyIx, err := keyIndexes(columns, r.keyColumns)
	if err != nil {
		return 0, err
	}

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("memory: row length %d != columns length %d", len(row), len(columns))
		}
		h := hashKey(row, keyIx)
		if _, exists := r.rows[h]; exists {
			continue
		}
		stored := make([]any, len(row))
		copy(stored, row)
		r.rows[h] = stored
		r.order = append(r.order, h)
		inserted++
	}
	return inserted, nil
}

// Exec implements storage.Repository; DDL is meaningless here.
func (r *Repository) Exec(ctx context.Context, sql string) error { return nil }

// Close implements storage.Repository.
func (r *Repository) Close() {}

// Len returns the number of stored rows.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// Rows returns the stored rows in insertion order.
func (r *Repository) Rows() [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]any, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, r.rows[h])
	}
	return out
}

// keyIndexes resolves the key columns into positions within columns. With no
// key columns configured, every position participates.
func keyIndexes(columns, keyColumns []string) ([]int, error) {
	if len(keyColumns) == 0 {
		ix := make([]int, len(columns))
		for i := range columns {
			ix[i] = i
		}
		return ix, nil
	}
	ix := make([]int, 0, len(keyColumns))
	for _, k := range keyColumns {
		found := -1
		for i, c := range columns {
			if c == k {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("memory: key column %q not in columns", k)
		}
		ix = append(ix, found)
	}
	return ix, nil
}

// hashKey folds the key cells into one xxh3 hash. Nil cells contribute a
// distinct marker so (nil) and ("") do not collide.
func hashKey(row []any, keyIx []int) uint64 {
	var b []byte
	for _, i := range keyIx {
		if row[i] == nil {
			b = append(b, 0x00)
		} else {
			b = append(b, fmt.Sprint(row[i])...)
		}
		b = append(b, 0x1f)
	}
	return xxh3.Hash(b)
}

func init() {
	storage.Register("memory", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return New(cfg.KeyColumns), nil
	})
}
