// Package aotload decodes airport records from their published serialized
// forms (JSON objects, NDJSON streams and the airport-codes CSV) into
// models.Airport. The models package does not depend on it; builds that
// only construct airports directly need not import it.
package aotload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"airport/models"
)

// ErrInvalidRecord marks a single record that could not be decoded. Stream
// readers keep going after it.
var ErrInvalidRecord = errors.New("invalid airport record")

// ErrMissingField is the FieldError cause for a key that is absent or null.
var ErrMissingField = errors.New("missing field")

// FieldError reports a field whose raw value could not be converted.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("airport field %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() []error {
	return []error{ErrInvalidRecord, e.Err}
}

// record is the external shape of an airport, every field in its literal
// serialized type.
type record struct {
	Ident        string `json:"ident"`
	Kind         string `json:"type"`
	Name         string `json:"name"`
	ElevationFt  int32  `json:"elevation_ft"`
	Continent    string `json:"continent"`
	ISOCountry   string `json:"iso_country"`
	ISORegion    string `json:"iso_region"`
	Municipality string `json:"municipality"`
	GPSCode      string `json:"gps_code"`
	IATACode     string `json:"iata_code"`
	LocalCode    string `json:"local_code"`
	Coordinates  string `json:"coordinates"`
}

// decodeRecord reads a JSON object into a record. Keys match exactly and
// every field must be present and non-null.
func decodeRecord(data []byte) (record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	var r record
	targets := []struct {
		name string
		dst  any
	}{
		{"ident", &r.Ident},
		{"type", &r.Kind},
		{"name", &r.Name},
		{"elevation_ft", &r.ElevationFt},
		{"continent", &r.Continent},
		{"iso_country", &r.ISOCountry},
		{"iso_region", &r.ISORegion},
		{"municipality", &r.Municipality},
		{"gps_code", &r.GPSCode},
		{"iata_code", &r.IATACode},
		{"local_code", &r.LocalCode},
		{"coordinates", &r.Coordinates},
	}
	for _, t := range targets {
		raw, ok := fields[t.name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return record{}, &FieldError{Field: t.name, Err: ErrMissingField}
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return record{}, &FieldError{Field: t.name, Value: string(raw), Err: err}
		}
	}
	return r, nil
}

func (r record) airport() (models.Airport, error) {
	coords, err := models.ParseCoords(r.Coordinates)
	if err != nil {
		return models.Airport{}, &FieldError{Field: "coordinates", Value: r.Coordinates, Err: err}
	}

	return models.Airport{
		Ident:        r.Ident,
		Kind:         r.Kind,
		Name:         r.Name,
		ElevationFt:  r.ElevationFt,
		Continent:    r.Continent,
		ISOCountry:   r.ISOCountry,
		ISORegion:    r.ISORegion,
		Municipality: r.Municipality,
		GPSCode:      r.GPSCode,
		IATACode:     r.IATACode,
		LocalCode:    r.LocalCode,
		Coordinates:  coords,
	}, nil
}

func fromAirport(a models.Airport) record {
	return record{
		Ident:        a.Ident,
		Kind:         a.Kind,
		Name:         a.Name,
		ElevationFt:  a.ElevationFt,
		Continent:    a.Continent,
		ISOCountry:   a.ISOCountry,
		ISORegion:    a.ISORegion,
		Municipality: a.Municipality,
		GPSCode:      a.GPSCode,
		IATACode:     a.IATACode,
		LocalCode:    a.LocalCode,
		Coordinates:  a.Coordinates.String(),
	}
}

// Airport is models.Airport with the JSON encoding of the airport-codes
// dataset. Use it as a field or slice element of larger documents.
type Airport models.Airport

// UnmarshalJSON fails with a *FieldError for an absent, null or mistyped
// field and leaves a unchanged.
func (a *Airport) UnmarshalJSON(data []byte) error {
	r, err := decodeRecord(data)
	if err != nil {
		return err
	}

	parsed, err := r.airport()
	if err != nil {
		return err
	}
	*a = Airport(parsed)
	return nil
}

func (a Airport) MarshalJSON() ([]byte, error) {
	return json.Marshal(fromAirport(models.Airport(a)))
}

// Decode decodes one JSON object. On failure no airport is returned.
func Decode(data []byte) (models.Airport, error) {
	var a Airport
	if err := a.UnmarshalJSON(data); err != nil {
		return models.Airport{}, err
	}
	return models.Airport(a), nil
}

// Encode writes a in the same JSON shape Decode reads.
func Encode(a models.Airport) ([]byte, error) {
	return json.Marshal(fromAirport(a))
}
