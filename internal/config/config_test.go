package config

import (
	"strings"
	"testing"
	"time"

	"github.com/hristo-banchev/terraloc-ingest/internal/schema"
)

const sampleRegistry = `{
	"locations": {
		"source": { "kind": "file", "file": { "path": "data/locations.csv" } },
		"parser": { "comma": ";", "lazy_quotes": true },
		"schema": "locations",
		"storage": { "kind": "memory" },
		"chunk_size": 500
	},
	"custom": {
		"source": { "kind": "http", "http": { "url": "https://x.test/d.csv", "max_retries": 2, "timeout_seconds": 10 } },
		"contract": {
			"name": "custom",
			"table": "custom",
			"fields": [{ "name": "id", "type": "int", "required": true }]
		},
		"storage": { "kind": "sqlite", "dsn": "file:x.db", "table": "custom" }
	}
}`

func TestLoadRegistry(t *testing.T) {
	t.Parallel()

	reg, err := LoadRegistry(strings.NewReader(sampleRegistry))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "custom" || got[1] != "locations" {
		t.Fatalf("Names()=%v", got)
	}

	in, err := reg.Lookup("locations")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if in.Source.Kind != "file" || in.Source.File.Path != "data/locations.csv" {
		t.Fatalf("source=%+v", in.Source)
	}
	if in.Parser.Delimiter() != ';' || !in.Parser.LazyQuotes {
		t.Fatalf("parser=%+v", in.Parser)
	}
	if in.EffectiveChunkSize() != 500 {
		t.Fatalf("chunk=%d; want 500", in.EffectiveChunkSize())
	}

	// Unknown names list the available ones.
	if _, err := reg.Lookup("nope"); err == nil || !strings.Contains(err.Error(), "locations") {
		t.Fatalf("Lookup(nope) err=%v", err)
	}
}

func TestLoadRegistry_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	const bad = `{"x": {"storage": {"kind": "memory"}, "chunksize": 5}}`
	if _, err := LoadRegistry(strings.NewReader(bad)); err == nil {
		t.Fatal("want error for unknown field, got nil")
	}
}

func TestResolveContract(t *testing.T) {
	t.Parallel()

	reg, err := LoadRegistry(strings.NewReader(sampleRegistry))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	// Built-in by name.
	in, _ := reg.Lookup("locations")
	c, err := in.ResolveContract()
	if err != nil {
		t.Fatalf("ResolveContract: %v", err)
	}
	if c.Name != "locations" {
		t.Fatalf("contract=%q", c.Name)
	}

	// Inline contract wins over (absent) schema name.
	in, _ = reg.Lookup("custom")
	c, err = in.ResolveContract()
	if err != nil {
		t.Fatalf("ResolveContract: %v", err)
	}
	if c.Name != "custom" || len(c.Fields) != 1 {
		t.Fatalf("contract=%+v", c)
	}

	// Neither set.
	if _, err := (Ingestion{}).ResolveContract(); err == nil {
		t.Fatal("want error when neither schema nor contract set")
	}
	// Unknown builtin.
	if _, err := (Ingestion{Schema: "nope"}).ResolveContract(); err == nil {
		t.Fatal("want error for unknown builtin")
	}
	// Inline takes precedence when both are set.
	both := Ingestion{Schema: "locations", Contract: &schema.Contract{Name: "inline"}}
	if c, err := both.ResolveContract(); err != nil || c.Name != "inline" {
		t.Fatalf("c=%v err=%v; want inline", c, err)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	var in Ingestion
	if in.EffectiveChunkSize() != DefaultChunkSize {
		t.Fatalf("EffectiveChunkSize()=%d; want %d", in.EffectiveChunkSize(), DefaultChunkSize)
	}
	in.ChunkSize = -3
	if in.EffectiveChunkSize() != -3 {
		t.Fatalf("negative chunk size must pass through for validation")
	}

	if (Parser{}).Delimiter() != ',' {
		t.Fatal("default delimiter must be comma")
	}
	if (SourceHTTP{TimeoutSeconds: 10}).Timeout() != 10*time.Second {
		t.Fatal("timeout seconds not converted")
	}
}
