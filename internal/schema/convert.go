package schema

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hristo-banchev/terraloc-ingest/pkg/records"
)

// Rejection reports why a record failed validate-and-convert. It is the only
// error kind Convert returns; the pipeline treats it as a per-record outcome
// (the record is dropped and counted), never as a run failure.
type Rejection struct {
	Field  string
	Reason string
}

func (r *Rejection) Error() string {
	if r.Field == "" {
		return r.Reason
	}
	return fmt.Sprintf("field %q: %s", r.Field, r.Reason)
}

func reject(field, format string, args ...any) *Rejection {
	return &Rejection{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// contractMeta holds per-field hot-path data precomputed from the contract so
// the per-record loop avoids repeated lowercasing and slice scans.
type contractMeta struct {
	once   sync.Once
	fields []fieldMeta
}

type fieldMeta struct {
	name     string
	kind     string // "int","float","bool","date","text"
	required bool
	layout   string

	enumSet   map[string]struct{}
	truthySet map[string]struct{}
	falsySet  map[string]struct{}
	enumList  []string

	min, max *float64
}

// Default truthy/falsy sets (lowercased), used when a field declares none.
var (
	defaultTruthy = map[string]struct{}{
		"1": {}, "t": {}, "true": {}, "yes": {}, "y": {},
	}
	defaultFalsy = map[string]struct{}{
		"0": {}, "f": {}, "false": {}, "no": {}, "n": {},
	}
)

func (c *Contract) buildMeta() *contractMeta {
	if c.meta == nil {
		c.meta = &contractMeta{}
	}
	c.meta.once.Do(func() {
		c.meta.fields = make([]fieldMeta, 0, len(c.Fields))
		for _, f := range c.Fields {
			m := fieldMeta{
				name:     f.Name,
				kind:     normalizeKind(f.Type),
				required: f.Required,
				layout:   f.Layout,
				min:      f.Min,
				max:      f.Max,
			}
			if len(f.Enum) > 0 {
				m.enumSet = make(map[string]struct{}, len(f.Enum))
				for _, s := range f.Enum {
					m.enumSet[s] = struct{}{}
				}
				m.enumList = append(m.enumList, f.Enum...)
			}
			if len(f.Truthy) > 0 {
				m.truthySet = make(map[string]struct{}, len(f.Truthy))
				for _, s := range f.Truthy {
					m.truthySet[strings.ToLower(s)] = struct{}{}
				}
			}
			if len(f.Falsy) > 0 {
				m.falsySet = make(map[string]struct{}, len(f.Falsy))
				for _, s := range f.Falsy {
					m.falsySet[strings.ToLower(s)] = struct{}{}
				}
			}
			c.meta.fields = append(c.meta.fields, m)
		}
	})
	return c.meta
}

// Convert validates rec against the contract and produces the typed attribute
// set for persistence. The result contains only the fields that were present
// in the record and converted; absent optional fields are omitted entirely.
//
// On failure the returned error is a *Rejection describing the first rule
// violated; the attribute set is nil.
func (c *Contract) Convert(rec records.Record) (records.AttributeSet, error) {
	meta := c.buildMeta()

	attrs := make(records.AttributeSet, len(meta.fields))
	for i := range meta.fields {
		fm := &meta.fields[i]
		raw, exists := rec[fm.name]

		if !exists || raw == "" {
			if fm.required {
				return nil, reject(fm.name, "required field missing")
			}
			continue
		}

		if fm.enumSet != nil {
			if _, ok := fm.enumSet[raw]; !ok {
				return nil, reject(fm.name, "%q not in enum %v", raw, fm.enumList)
			}
		}

		switch fm.kind {
		case "int":
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, reject(fm.name, "%q not an int", raw)
			}
			if err := fm.checkRange(float64(n), raw); err != nil {
				return nil, err
			}
			attrs[fm.name] = n

		case "float":
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, reject(fm.name, "%q not a number", raw)
			}
			if err := fm.checkRange(f, raw); err != nil {
				return nil, err
			}
			attrs[fm.name] = f

		case "bool":
			b, ok := fm.parseBool(raw)
			if !ok {
				return nil, reject(fm.name, "%q not a recognized boolean", raw)
			}
			attrs[fm.name] = b

		case "date":
			t, ok := parseAnyDate(raw, fm.layout, c.DateLayout)
			if !ok {
				return nil, reject(fm.name, "invalid date %q", raw)
			}
			attrs[fm.name] = t

		default: // text
			attrs[fm.name] = raw
		}
	}
	return attrs, nil
}

func (fm *fieldMeta) checkRange(v float64, raw string) error {
	if fm.min != nil && v < *fm.min {
		return reject(fm.name, "%s below minimum %v", raw, *fm.min)
	}
	if fm.max != nil && v > *fm.max {
		return reject(fm.name, "%s above maximum %v", raw, *fm.max)
	}
	return nil
}

// parseBool checks membership against the field's sets if declared, falling
// back to the default truthy/falsy sets otherwise.
func (fm *fieldMeta) parseBool(raw string) (val, ok bool) {
	s := strings.ToLower(raw)
	truthy, falsy := fm.truthySet, fm.falsySet
	if truthy == nil && falsy == nil {
		truthy, falsy = defaultTruthy, defaultFalsy
	}
	if _, hit := truthy[s]; hit {
		return true, true
	}
	if _, hit := falsy[s]; hit {
		return false, true
	}
	return false, false
}

// parseAnyDate attempts (in order): the field layout, ISO 2006-01-02,
// RFC 3339, then the contract-wide fallback layout.
func parseAnyDate(s, fieldLayout, globalLayout string) (time.Time, bool) {
	if fieldLayout != "" {
		if t, err := time.Parse(fieldLayout, s); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if globalLayout != "" {
		if t, err := time.Parse(globalLayout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
