// Package config defines the canonical, JSON-serializable configuration model
// for ingestion runs. It is intentionally small, explicit, and dependency-free
// so that named ingestions can be loaded from disk (or other sources) and
// passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in ingestion
//     files under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by
//     the standard library.
//
// Example (trimmed):
//
//	{
//	  "locations": {
//	    "source":  { "kind": "file", "file": { "path": "data/locations.csv" } },
//	    "parser":  { "comma": ",", "lazy_quotes": false },
//	    "schema":  "locations",
//	    "storage": { "kind": "postgres", "dsn": "postgresql://...", "table": "public.locations" },
//	    "chunk_size": 1000
//	  }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/hristo-banchev/terraloc-ingest/internal/schema"
)

// DefaultChunkSize is applied when an ingestion does not set chunk_size.
const DefaultChunkSize = 1000

// Registry maps ingestion names to their definitions. The name doubles as the
// dataset label on metrics.
type Registry map[string]Ingestion

// Ingestion describes one named ingestion: where the input comes from, how to
// parse it, which contract governs it, and where rows land.
type Ingestion struct {
	// Source describes where input data comes from (local file or HTTP).
	Source Source `json:"source"`

	// Parser configures the CSV decoder.
	Parser Parser `json:"parser"`

	// Schema names a built-in contract. Mutually exclusive with Contract;
	// when both are set, the inline Contract wins.
	Schema string `json:"schema,omitempty"`

	// Contract is an inline contract definition for datasets that have no
	// built-in schema.
	Contract *schema.Contract `json:"contract,omitempty"`

	// Storage describes where converted rows are written.
	Storage Storage `json:"storage"`

	// ChunkSize is the number of records per chunk. Zero means
	// DefaultChunkSize; negative values are rejected by validation.
	ChunkSize int `json:"chunk_size,omitempty"`

	// ReadAhead bounds the decode read-ahead channel. Zero means the
	// pipeline default.
	ReadAhead int `json:"read_ahead,omitempty"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`

	// HTTP carries options for the "http" source kind.
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	// URL is the location fetched with GET.
	URL string `json:"url"`

	// MaxRetries bounds retry attempts on retryable failures. Zero means
	// the source default.
	MaxRetries int `json:"max_retries"`

	// TimeoutSeconds is the per-attempt request timeout. Zero means the
	// source default.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Timeout returns the per-attempt timeout as a duration.
func (s SourceHTTP) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Parser configures the CSV decoder.
type Parser struct {
	// Comma is the field delimiter as a one-character string. Empty means ",".
	Comma string `json:"comma"`

	// LazyQuotes permits non-standard quoting in the input.
	LazyQuotes bool `json:"lazy_quotes"`
}

// Delimiter returns the configured delimiter as a rune, defaulting to ','.
func (p Parser) Delimiter() rune {
	if p.Comma == "" {
		return ','
	}
	return []rune(p.Comma)[0]
}

// Storage selects and configures the sink used to persist converted rows.
type Storage struct {
	// Kind selects the storage implementation (e.g., "postgres", "sqlite",
	// "mysql", "mssql", "memory").
	Kind string `json:"kind"`

	// DSN is the connection string for the selected driver.
	DSN string `json:"dsn"`

	// Table is the destination table name (e.g., "public.locations").
	Table string `json:"table"`

	// AutoCreateTable should the process create the table when missing.
	AutoCreateTable bool `json:"auto_create_table"`
}

// ResolveContract returns the contract governing this ingestion: the inline
// Contract when present, otherwise the built-in named by Schema.
func (in Ingestion) ResolveContract() (*schema.Contract, error) {
	if in.Contract != nil {
		return in.Contract, nil
	}
	if in.Schema == "" {
		return nil, fmt.Errorf("ingestion defines neither schema nor contract")
	}
	c := schema.Builtin(in.Schema)
	if c == nil {
		return nil, fmt.Errorf("no built-in schema named %q", in.Schema)
	}
	return c, nil
}

// EffectiveChunkSize returns ChunkSize with the default applied. Negative
// values pass through so validation can reject them.
func (in Ingestion) EffectiveChunkSize() int {
	if in.ChunkSize == 0 {
		return DefaultChunkSize
	}
	return in.ChunkSize
}

// LoadRegistry decodes a registry of named ingestions from r. Unknown JSON
// fields are rejected so typos in config files surface early.
func LoadRegistry(r io.Reader) (Registry, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var reg Registry
	if err := dec.Decode(&reg); err != nil {
		return nil, fmt.Errorf("decode ingestion registry: %w", err)
	}
	return reg, nil
}

// LoadRegistryFile reads and decodes the registry at path.
func LoadRegistryFile(path string) (Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry %s: %w", path, err)
	}
	defer f.Close()
	return LoadRegistry(f)
}

// Lookup returns the ingestion registered under name. Unknown names are an
// error that lists the available names to aid debugging.
func (r Registry) Lookup(name string) (Ingestion, error) {
	in, ok := r[name]
	if !ok {
		return Ingestion{}, fmt.Errorf("unknown ingestion %q (available: %v)", name, r.Names())
	}
	return in, nil
}

// Names returns the registered ingestion names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
