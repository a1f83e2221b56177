package aotload

import (
	"encoding/json"
	"errors"
	"testing"

	"airport/models"
)

const jfkJSON = `{
	"ident": "KJFK",
	"type": "large_airport",
	"name": "John F Kennedy International Airport",
	"elevation_ft": 13,
	"continent": "NA",
	"iso_country": "US",
	"iso_region": "US-NY",
	"municipality": "New York",
	"gps_code": "KJFK",
	"iata_code": "JFK",
	"local_code": "JFK",
	"coordinates": "40.6413, -73.7781"
}`

var jfk = models.Airport{
	Ident:        "KJFK",
	Kind:         "large_airport",
	Name:         "John F Kennedy International Airport",
	ElevationFt:  13,
	Continent:    "NA",
	ISOCountry:   "US",
	ISORegion:    "US-NY",
	Municipality: "New York",
	GPSCode:      "KJFK",
	IATACode:     "JFK",
	LocalCode:    "JFK",
	Coordinates:  models.Coords{Latitude: 40.6413, Longitude: -73.7781},
}

func TestDecode(t *testing.T) {
	got, err := Decode([]byte(jfkJSON))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got != jfk {
		t.Fatalf("Decode = %+v; want %+v", got, jfk)
	}
}

// jfkWith returns jfkJSON with edit applied to its decoded fields.
func jfkWith(t *testing.T, edit func(fields map[string]any)) string {
	t.Helper()
	var fields map[string]any
	if err := json.Unmarshal([]byte(jfkJSON), &fields); err != nil {
		t.Fatalf("Unmarshal fixture: %v", err)
	}
	edit(fields)
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Marshal fixture: %v", err)
	}
	return string(data)
}

func set(key string, value any) func(map[string]any) {
	return func(m map[string]any) { m[key] = value }
}

func drop(key string) func(map[string]any) {
	return func(m map[string]any) { delete(m, key) }
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name      string
		edit      func(map[string]any)
		raw       string
		wantField string
		wantErr   error
	}{
		{name: "bad coordinates", edit: set("coordinates", "bad"), wantField: "coordinates", wantErr: models.ErrBadLatitude},
		{name: "empty coordinates", edit: set("coordinates", ""), wantField: "coordinates", wantErr: models.ErrMissingLatitude},
		{name: "missing coordinates", edit: drop("coordinates"), wantField: "coordinates", wantErr: ErrMissingField},
		{name: "latitude only", edit: set("coordinates", "12.5"), wantField: "coordinates", wantErr: models.ErrMissingLongitude},
		{name: "bad longitude", edit: set("coordinates", "12.5, east"), wantField: "coordinates", wantErr: models.ErrBadLongitude},
		{name: "missing name", edit: drop("name"), wantField: "name", wantErr: ErrMissingField},
		{name: "null ident", edit: set("ident", nil), wantField: "ident", wantErr: ErrMissingField},
		{name: "null elevation", edit: set("elevation_ft", nil), wantField: "elevation_ft", wantErr: ErrMissingField},
		{name: "blank elevation", edit: set("elevation_ft", ""), wantField: "elevation_ft"},
		{name: "elevation not a number", edit: set("elevation_ft", "high"), wantField: "elevation_ft"},
		{name: "elevation overflows int32", edit: set("elevation_ft", 3000000000), wantField: "elevation_ft"},
		{name: "name not a string", edit: set("name", 7), wantField: "name"},
		{
			name: "keys in another case",
			edit: func(m map[string]any) {
				m["IDENT"] = m["ident"]
				delete(m, "ident")
			},
			wantField: "ident",
			wantErr:   ErrMissingField,
		},
		{name: "only coordinates", raw: `{"coordinates":"1, 2"}`, wantField: "ident", wantErr: ErrMissingField},
		{name: "null document", raw: `null`, wantField: "ident", wantErr: ErrMissingField},
		{name: "not an object", raw: `["KJFK"]`},
		{name: "truncated", raw: `{"ident":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := tc.raw
			if tc.edit != nil {
				input = jfkWith(t, tc.edit)
			}

			got, err := Decode([]byte(input))
			if err == nil {
				t.Fatalf("Decode(%s) = %+v; want error", input, got)
			}
			if got != (models.Airport{}) {
				t.Fatalf("Decode(%s) returned partial record %+v", input, got)
			}
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("error %v does not wrap ErrInvalidRecord", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("error %v; want %v", err, tc.wantErr)
			}
			if tc.wantField != "" {
				var fe *FieldError
				if !errors.As(err, &fe) {
					t.Fatalf("error %v is not a *FieldError", err)
				}
				if fe.Field != tc.wantField {
					t.Fatalf("FieldError.Field = %q; want %q", fe.Field, tc.wantField)
				}
			}
		})
	}
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	got, err := Decode([]byte(jfkWith(t, set("id", 3622))))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got != jfk {
		t.Fatalf("Decode = %+v; want %+v", got, jfk)
	}
}

func TestAirport_UnmarshalJSONInDocument(t *testing.T) {
	egll := jfkWith(t, func(m map[string]any) {
		m["ident"] = "EGLL"
		m["coordinates"] = "51.4706, -0.461941, extra"
	})
	doc := `[` + jfkJSON + `, ` + egll + `]`

	var got []Airport
	if err := json.Unmarshal([]byte(doc), &got); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d airports; want 2", len(got))
	}
	if models.Airport(got[0]) != jfk {
		t.Errorf("first = %+v; want %+v", got[0], jfk)
	}
	want := models.Coords{Latitude: 51.4706, Longitude: -0.461941}
	if got[1].Coordinates != want {
		t.Errorf("second coordinates = %+v; want %+v", got[1].Coordinates, want)
	}
}

func TestAirport_UnmarshalJSONInDocumentFailsWhole(t *testing.T) {
	doc := `{"airport": ` + jfkWith(t, set("coordinates", "bad")) + `}`

	var got struct {
		Airport Airport `json:"airport"`
	}
	err := json.Unmarshal([]byte(doc), &got)
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "coordinates" {
		t.Fatalf("Unmarshal error = %v; want coordinates FieldError", err)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	cases := []models.Airport{
		jfk,
		{Ident: "00A", Kind: "heliport", Name: "Total RF Heliport", ElevationFt: 11, Coordinates: models.Coords{Latitude: 40.07080078125, Longitude: -74.93360137939453}},
		{Ident: "ZERO"},
		{Ident: "NEG", ElevationFt: -1266, Coordinates: models.Coords{Latitude: -1.0 / 3.0, Longitude: 1e-7}},
	}

	for _, a := range cases {
		t.Run(a.Ident, func(t *testing.T) {
			data, err := Encode(a)
			if err != nil {
				t.Fatalf("Encode returned error: %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode(%s) returned error: %v", data, err)
			}
			if got != a {
				t.Fatalf("round trip = %+v; want %+v", got, a)
			}
		})
	}
}

func TestEncode_UsesExternalFieldNames(t *testing.T) {
	data, err := Encode(jfk)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if raw["type"] != "large_airport" {
		t.Errorf("type = %v; want large_airport", raw["type"])
	}
	if raw["coordinates"] != "40.6413, -73.7781" {
		t.Errorf("coordinates = %v; want \"40.6413, -73.7781\"", raw["coordinates"])
	}
	if _, ok := raw["kind"]; ok {
		t.Errorf("unexpected kind key in %s", data)
	}
}
