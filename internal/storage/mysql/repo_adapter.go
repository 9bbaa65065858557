// Adapter wiring the MySQL backend into the storage factory.
package mysql

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
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mysql", func(ctx context.Context, repo storage.Repository, cfg storage.Config, c *schema.Contract) error {
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
			return "", fmt.Errorf("mysql: field %q: %w", f.Name, err)
		}
		def := "`" + f.Name + "` " + t
		if f.Required {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}
	if c.AutoTimestamps {
		cols = append(cols,
			"`"+schema.CreatedAtColumn+"` DATETIME",
			"`"+schema.UpdatedAtColumn+"` DATETIME",
		)
	}
	if len(c.KeyColumns) > 0 {
		keys := make([]string, len(c.KeyColumns))
		for i, k := range c.KeyColumns {
			// Keyed text columns need a prefix length under utf8mb4.
			if schema.KindOf(fieldType(c, k)) == "text" {
				keys[i] = "`" + k + "`(191)"
			} else {
				keys[i] = "`" + k + "`"
			}
		}
		cols = append(cols, "UNIQUE KEY uq_"+strings.ReplaceAll(table, ".", "_")+" ("+strings.Join(keys, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", table, strings.Join(cols, ",\n  ")), nil
}

func fieldType(c *schema.Contract, name string) string {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return ""
}

func columnType(t string) (string, error) {
	switch schema.KindOf(t) {
	case "int":
		return "BIGINT", nil
	case "float":
		return "DOUBLE", nil
	case "bool":
		return "TINYINT(1)", nil
	case "date":
		return "DATETIME", nil
	case "text":
		return "TEXT", nil
	default:
		return "", fmt.Errorf("unknown type %q", t)
	}
}
