// Adapter wiring the SQLite backend into the storage factory; registration
// happens in init so callers never import this package directly.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hristo-banchev/terraloc-ingest/internal/schema"
	"github.com/hristo-banchev/terraloc-ingest/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

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
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("sqlite", func(ctx context.Context, repo storage.Repository, cfg storage.Config, c *schema.Contract) error {
		ddl, err := createTableSQL(cfg.Table, c)
		if err != nil {
			return err
		}
		return repo.Exec(ctx, ddl)
	})
}

func createTableSQL(table string, c *schema.Contract) (string, error) {
	if table == "" {
		table = c.Table
	}
	cols := make([]string, 0, len(c.Fields)+2)
	for _, f := range c.Fields {
		t, err := columnType(f.Type)
		if err != nil {
			return "", fmt.Errorf("sqlite: field %q: %w", f.Name, err)
		}
		def := f.Name + " " + t
		if f.Required {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}
	if c.AutoTimestamps {
		cols = append(cols, schema.CreatedAtColumn+" TEXT", schema.UpdatedAtColumn+" TEXT")
	}
	if len(c.KeyColumns) > 0 {
		cols = append(cols, "UNIQUE ("+strings.Join(c.KeyColumns, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", table, strings.Join(cols, ",\n  ")), nil
}

func columnType(fieldType string) (string, error) {
	switch schema.KindOf(fieldType) {
	case "int", "bool":
		return "INTEGER", nil // bools stored as 0/1
	case "float":
		return "REAL", nil
	case "date", "text":
		return "TEXT", nil
	default:
		return "", fmt.Errorf("unknown type %q", fieldType)
	}
}
