package schema

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestContractValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Contract {
		return &Contract{
			Name:       "t",
			Table:      "t",
			Fields:     []Field{{Name: "a", Type: "text"}, {Name: "n", Type: "int", Min: f64(0), Max: f64(9)}},
			KeyColumns: []string{"a"},
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid contract rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Contract)
	}{
		{"empty name", func(c *Contract) { c.Name = " " }},
		{"empty table", func(c *Contract) { c.Table = "" }},
		{"no fields", func(c *Contract) { c.Fields = nil }},
		{"empty field name", func(c *Contract) { c.Fields[0].Name = "" }},
		{"duplicate field", func(c *Contract) { c.Fields[1].Name = "a" }},
		{"unknown type", func(c *Contract) { c.Fields[0].Type = "blob" }},
		{"min above max", func(c *Contract) { *c.Fields[1].Min = 10 }},
		{"key not a field", func(c *Contract) { c.KeyColumns = []string{"zz"} }},
	}
	for _, tc := range cases {
		c := valid()
		tc.mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: accepted, want error", tc.name)
		}
	}
}

func TestContractColumns(t *testing.T) {
	t.Parallel()

	c := &Contract{
		Name:   "t",
		Table:  "t",
		Fields: []Field{{Name: "a"}, {Name: "b"}},
	}
	if got := c.Columns(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Columns()=%v", got)
	}
	c.AutoTimestamps = true
	want := []string{"a", "b", CreatedAtColumn, UpdatedAtColumn}
	if got := c.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns()=%v; want %v", got, want)
	}
}

func TestNormalizeKind(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"int": "int", "BIGINT": "int", "integer": "int",
		"float": "float", "numeric": "float", "decimal": "float",
		"bool": "bool", "Boolean": "bool",
		"date": "date", "timestamptz": "date",
		"text": "text", "string": "text", "": "text",
		"blob": "",
	}
	for in, want := range cases {
		if got := KindOf(in); got != want {
			t.Fatalf("KindOf(%q)=%q; want %q", in, got, want)
		}
	}
}

// Contracts round-trip through the config JSON without losing rules.
func TestContractJSON(t *testing.T) {
	t.Parallel()

	src := `{
		"name": "places",
		"table": "public.places",
		"fields": [
			{"name": "name", "type": "text", "required": true},
			{"name": "lat", "type": "float", "required": true, "min": -90, "max": 90},
			{"name": "seen_on", "type": "date", "layout": "02.01.2006"}
		],
		"key_columns": ["name"],
		"header_map": {"place_name": "name"},
		"auto_timestamps": true
	}`
	var c Contract
	if err := json.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !c.AutoTimestamps || c.HeaderMap["place_name"] != "name" {
		t.Fatalf("decoded contract lost options: %+v", c)
	}
	f := c.Fields[1]
	if f.Min == nil || *f.Min != -90 || f.Max == nil || *f.Max != 90 {
		t.Fatalf("numeric bounds lost: %+v", f)
	}
}

func TestBuiltin(t *testing.T) {
	t.Parallel()

	c := Builtin("locations")
	if c == nil {
		t.Fatal("locations builtin missing")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("locations contract invalid: %v", err)
	}
	if Builtin("nope") != nil {
		t.Fatal("unknown builtin resolved")
	}
}
