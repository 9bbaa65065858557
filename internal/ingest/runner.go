package ingest

import (
	"context"
	"fmt"

	"github.com/hristo-banchev/terraloc-ingest/internal/config"
	"github.com/hristo-banchev/terraloc-ingest/internal/datasource"
	"github.com/hristo-banchev/terraloc-ingest/internal/datasource/file"
	"github.com/hristo-banchev/terraloc-ingest/internal/datasource/httpds"
	"github.com/hristo-banchev/terraloc-ingest/internal/storage"
)

// RunNamed executes the ingestion registered under name in reg: it validates
// the config, resolves the contract, opens the data source and the storage
// backend, bootstraps the table when asked, and hands off to Run. The
// repository is always closed before returning.
func RunNamed(ctx context.Context, reg config.Registry, name string, verbose bool) (*Metrics, error) {
	in, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	if issues := config.ValidateIngestion(in); config.HasErrors(issues) {
		for _, iss := range issues {
			if iss.Severity == config.SeverityError {
				return nil, fmt.Errorf("ingestion %q: %w", name, iss)
			}
		}
	}

	contract, err := in.ResolveContract()
	if err != nil {
		return nil, fmt.Errorf("ingestion %q: %w", name, err)
	}

	src, err := buildSource(in.Source)
	if err != nil {
		return nil, fmt.Errorf("ingestion %q: %w", name, err)
	}

	table := in.Storage.Table
	if table == "" {
		table = contract.Table
	}
	repo, err := storage.New(ctx, storage.Config{
		Kind:       in.Storage.Kind,
		DSN:        in.Storage.DSN,
		Table:      table,
		KeyColumns: contract.KeyColumns,
	})
	if err != nil {
		return nil, fmt.Errorf("ingestion %q: open storage: %w", name, err)
	}
	defer repo.Close()

	if in.Storage.AutoCreateTable {
		cfg := storage.Config{Kind: in.Storage.Kind, Table: table, KeyColumns: contract.KeyColumns}
		if err := storage.EnsureTable(ctx, repo, cfg, contract); err != nil {
			return nil, fmt.Errorf("ingestion %q: ensure table: %w", name, err)
		}
	}

	return Run(ctx, src, repo, contract, Options{
		Dataset:    name,
		ChunkSize:  in.EffectiveChunkSize(),
		ReadAhead:  in.ReadAhead,
		Comma:      in.Parser.Delimiter(),
		LazyQuotes: in.Parser.LazyQuotes,
		Verbose:    verbose,
	})
}

// buildSource maps a source config onto a datasource implementation.
func buildSource(s config.Source) (datasource.Source, error) {
	switch s.Kind {
	case "file":
		return file.NewLocal(s.File.Path), nil
	case "http":
		return httpds.NewRemote(s.HTTP.URL, httpds.Config{
			MaxRetries: s.HTTP.MaxRetries,
			Timeout:    s.HTTP.Timeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", s.Kind)
	}
}
