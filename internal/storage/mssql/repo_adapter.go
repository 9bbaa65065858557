// Adapter wiring the SQL Server backend into the storage factory.
package mssql

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
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:        cfg.DSN,
			Table:      cfg.Table,
			KeyColumns: cfg.KeyColumns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mssql", func(ctx context.Context, repo storage.Repository, cfg storage.Config, c *schema.Contract) error {
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
			return "", fmt.Errorf("mssql: field %q: %w", f.Name, err)
		}
		def := msIdent(f.Name) + " " + t
		if f.Required {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}
	if c.AutoTimestamps {
		cols = append(cols,
			msIdent(schema.CreatedAtColumn)+" DATETIME2",
			msIdent(schema.UpdatedAtColumn)+" DATETIME2",
		)
	}
	if len(c.KeyColumns) > 0 {
		cols = append(cols, "CONSTRAINT uq_"+strings.ReplaceAll(table, ".", "_")+
			" UNIQUE ("+strings.Join(mapIdent(c.KeyColumns), ", ")+")")
	}
	ddl := fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (\n  %s\n)",
		table, table, strings.Join(cols, ",\n  "),
	)
	return ddl, nil
}

func columnType(t string) (string, error) {
	switch schema.KindOf(t) {
	case "int":
		return "BIGINT", nil
	case "float":
		return "FLOAT", nil
	case "bool":
		return "BIT", nil
	case "date":
		return "DATETIME2", nil
	case "text":
		// Unique-keyable in SQL Server, unlike NVARCHAR(MAX).
		return "NVARCHAR(400)", nil
	default:
		return "", fmt.Errorf("unknown type %q", t)
	}
}
