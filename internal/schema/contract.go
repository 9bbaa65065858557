// Package schema defines the statically-declared contract a dataset is
// ingested against: the ordered field set, the per-field casting and
// validation rules, and the validate-and-convert operation the pipeline
// applies to every decoded record.
//
// A Contract is resolved once at setup (typically decoded from the ingestion
// config JSON) and is immutable for the duration of a run. Hot-path metadata
// (kind dispatch, enum and truthy/falsy lookup sets) is precomputed lazily on
// first use.
package schema

import (
	"fmt"
	"strings"
)

// Timestamp columns populated by the pipeline when AutoTimestamps is set.
// One timestamp value is computed per chunk and shared by every record in it.
const (
	CreatedAtColumn = "created_at"
	UpdatedAtColumn = "updated_at"
)

// Field declares one contract field and its casting/validation rules.
type Field struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // "text" | "int" | "float" | "bool" | "date"
	Required bool     `json:"required,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Layout   string   `json:"layout,omitempty"` // date layout
	Truthy   []string `json:"truthy,omitempty"` // bool parsing
	Falsy    []string `json:"falsy,omitempty"`

	// Min/Max bound numeric fields (int and float) inclusively.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contract is the full schema descriptor for one dataset.
type Contract struct {
	Name   string  `json:"name"`
	Table  string  `json:"table"`
	Fields []Field `json:"fields"`

	// KeyColumns form the natural uniqueness key the store enforces. Rows
	// whose key already exists are skipped by the insert-if-absent write.
	KeyColumns []string `json:"key_columns,omitempty"`

	// HeaderMap maps source header names to canonical field names, applied
	// after the generic header normalization.
	HeaderMap map[string]string `json:"header_map,omitempty"`

	// DateLayout is a dataset-wide fallback layout for date fields.
	DateLayout string `json:"date_layout,omitempty"`

	// AutoTimestamps asks the pipeline to populate created_at/updated_at
	// with a per-chunk timestamp, overriding any decoded value.
	AutoTimestamps bool `json:"auto_timestamps,omitempty"`

	meta *contractMeta
}

// FieldNames returns the declared field names in contract order.
func (c *Contract) FieldNames() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// Columns returns the persisted column set: the declared fields plus the
// timestamp columns when AutoTimestamps is set. This is the column order used
// for every bulk write.
func (c *Contract) Columns() []string {
	cols := c.FieldNames()
	if c.AutoTimestamps {
		cols = append(cols, CreatedAtColumn, UpdatedAtColumn)
	}
	return cols
}

// Validate checks the contract for structural problems that would otherwise
// only surface mid-run.
func (c *Contract) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("schema: contract name required")
	}
	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("schema %q: table required", c.Name)
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("schema %q: at least one field required", c.Name)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %q: field with empty name", c.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %q: duplicate field %q", c.Name, f.Name)
		}
		seen[f.Name] = true
		if k := normalizeKind(f.Type); k == "" {
			return fmt.Errorf("schema %q: field %q has unknown type %q", c.Name, f.Name, f.Type)
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return fmt.Errorf("schema %q: field %q min > max", c.Name, f.Name)
		}
	}
	for _, k := range c.KeyColumns {
		if !seen[k] {
			return fmt.Errorf("schema %q: key column %q is not a declared field", c.Name, k)
		}
	}
	return nil
}

// KindOf exposes the normalized kind ("text", "int", "float", "bool",
// "date", or "" for unknown) for a declared field type. Storage backends use
// it to derive column DDL from a contract.
func KindOf(fieldType string) string { return normalizeKind(fieldType) }

// normalizeKind maps the accepted type spellings onto the small set of
// validator kinds used by the conversion hot path. Returns "" for unknown.
func normalizeKind(t string) string {
	switch strings.ToLower(t) {
	case "bigint", "int8", "integer", "int4", "int2", "int":
		return "int"
	case "float", "real", "double", "numeric", "decimal":
		return "float"
	case "boolean", "bool":
		return "bool"
	case "date", "datetime", "timestamp", "timestamptz":
		return "date"
	case "text", "string", "":
		return "text"
	default:
		return ""
	}
}
