package schema

// Builtin returns the contract registered under name, or nil. Builtin
// contracts cover the datasets this project ships support for out of the box;
// configs may also declare a contract inline instead.
func Builtin(name string) *Contract {
	switch name {
	case "locations":
		return Locations()
	default:
		return nil
	}
}

func f64(v float64) *float64 { return &v }

// Locations is the geolocation dataset contract: one row per named place with
// WGS84 coordinates. The (name, country_code) pair is the natural key.
func Locations() *Contract {
	return &Contract{
		Name:  "locations",
		Table: "locations",
		Fields: []Field{
			{Name: "name", Type: "text", Required: true},
			{Name: "latitude", Type: "float", Required: true, Min: f64(-90), Max: f64(90)},
			{Name: "longitude", Type: "float", Required: true, Min: f64(-180), Max: f64(180)},
			{Name: "country_code", Type: "text", Required: true},
			{Name: "population", Type: "int", Min: f64(0)},
			{Name: "elevation_m", Type: "float"},
			{Name: "inhabited", Type: "bool"},
			{Name: "surveyed_on", Type: "date", Layout: "2006-01-02"},
		},
		KeyColumns:     []string{"name", "country_code"},
		AutoTimestamps: true,
	}
}
