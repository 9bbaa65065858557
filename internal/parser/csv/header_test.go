package csv

import (
	"reflect"
	"testing"
)

func TestFoldFieldName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Name":            "name",
		"  Country Code ": "country_code",
		"Elevation-M":     "elevation_m",
		"lat.deg":         "lat_deg",
		"Población":       "poblacion",
		"Město Název":     "mesto_nazev",
		"a--b":            "a_b",
		"__x__":           "x",
		"%":               "",
		"pop2024":         "pop2024",
	}
	for in, want := range cases {
		if got := FoldFieldName(in); got != want {
			t.Fatalf("FoldFieldName(%q)=%q; want %q", in, got, want)
		}
	}
}

func TestCanonicalHeader(t *testing.T) {
	t.Parallel()

	raw := []string{"\uFEFFPlace Name", "Lat", "LON", "CC"}
	hm := map[string]string{"Lat": "latitude", "LON": "longitude"}

	got := CanonicalHeader(raw, hm)
	want := []string{"place_name", "latitude", "longitude", "cc"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CanonicalHeader=%v; want %v", got, want)
	}

	// Without a map, everything goes through the generic fold; the BOM is
	// stripped only from the first cell.
	got = CanonicalHeader([]string{"\uFEFFA", "B"}, nil)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("CanonicalHeader=%v; want [a b]", got)
	}
}
