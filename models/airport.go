package models

// Airport is one entry of the airport-codes dataset. Text fields are kept
// exactly as they appear in the source.
type Airport struct {
	Ident        string
	Kind         string // "large_airport", "heliport", ...
	Name         string
	ElevationFt  int32
	Continent    string
	ISOCountry   string
	ISORegion    string
	Municipality string
	GPSCode      string
	IATACode     string
	LocalCode    string
	Coordinates  Coords
}
