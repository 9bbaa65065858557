// Package records defines the two row representations that flow through the
// ingestion pipeline.
//
// A Record is the raw, header-keyed view of one input row: every value is the
// string exactly as decoded (post trim), and absent/empty cells are simply
// missing keys. Records are ephemeral; they exist only between the decoder
// and the schema conversion and are never persisted.
//
// An AttributeSet is the typed result of a successful validate-and-convert:
// field name to converted value (string, int64, float64, bool, time.Time).
// Only fields that were actually asserted by the conversion are present.
package records

// Record maps canonical field names to raw string values for one input row.
type Record map[string]string

// AttributeSet maps field names to converted, persistence-ready values.
type AttributeSet map[string]any
