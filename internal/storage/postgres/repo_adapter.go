// This adapter wires the Postgres backend into the storage-agnostic factory
// by registering a constructor at init time, and registers a DDL bootstrapper
// so callers can create the target table from the schema contract without
// branching on the backend.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hristo-banchev/terraloc-ingest/internal/schema"
	"github.com/hristo-banchev/terraloc-ingest/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adapts *Repository to storage.Repository, adding a Close
// method that calls the cleanup function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres", func(ctx context.Context, repo storage.Repository, cfg storage.Config, c *schema.Contract) error {
		ddl, err := createTableSQL(cfg.Table, c)
		if err != nil {
			return err
		}
		return repo.Exec(ctx, ddl)
	})
}

// createTableSQL renders CREATE TABLE IF NOT EXISTS with the contract's
// columns and a UNIQUE constraint over its key columns.
func createTableSQL(table string, c *schema.Contract) (string, error) {
	if table == "" {
		table = c.Table
	}
	cols := make([]string, 0, len(c.Fields)+2)
	for _, f := range c.Fields {
		t, err := columnType(f.Type)
		if err != nil {
			return "", fmt.Errorf("postgres: field %q: %w", f.Name, err)
		}
		def := pgIdent(f.Name) + " " + t
		if f.Required {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}
	if c.AutoTimestamps {
		cols = append(cols,
			pgIdent(schema.CreatedAtColumn)+" TIMESTAMPTZ",
			pgIdent(schema.UpdatedAtColumn)+" TIMESTAMPTZ",
		)
	}
	if len(c.KeyColumns) > 0 {
		cols = append(cols, "UNIQUE ("+strings.Join(mapIdent(c.KeyColumns), ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", pgFQN(table), strings.Join(cols, ",\n  ")), nil
}

func columnType(fieldType string) (string, error) {
	switch schema.KindOf(fieldType) {
	case "int":
		return "BIGINT", nil
	case "float":
		return "DOUBLE PRECISION", nil
	case "bool":
		return "BOOLEAN", nil
	case "date":
		return "TIMESTAMPTZ", nil
	case "text":
		return "TEXT", nil
	default:
		return "", fmt.Errorf("unknown type %q", fieldType)
	}
}
