package aotload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"airport/models"
)

var ErrInvalidHeader = errors.New("invalid airport csv header")

// Columns is the header of the airport-codes CSV. Extra columns are allowed
// and ignored; order does not matter.
var Columns = []string{
	"ident", "type", "name", "elevation_ft", "continent", "iso_country",
	"iso_region", "municipality", "gps_code", "iata_code", "local_code", "coordinates",
}

// CSVDecoder maps rows to airports using the positions found in a header.
type CSVDecoder struct {
	index map[string]int
	width int
}

func NewCSVDecoder(header []string) (*CSVDecoder, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrInvalidHeader, strings.Join(missing, ", "))
	}

	return &CSVDecoder{index: index, width: len(header)}, nil
}

// Decode converts one row. A blank elevation_ft decodes as 0, unlike the
// JSON form where elevation_ft must be a number. A non-numeric or
// out-of-range elevation is a *FieldError, as is a bad coordinates value.
func (d *CSVDecoder) Decode(row []string) (models.Airport, error) {
	if len(row) != d.width {
		return models.Airport{}, fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidRecord, d.width, len(row))
	}
	col := func(name string) string { return row[d.index[name]] }

	r := record{
		Ident:        col("ident"),
		Kind:         col("type"),
		Name:         col("name"),
		Continent:    col("continent"),
		ISOCountry:   col("iso_country"),
		ISORegion:    col("iso_region"),
		Municipality: col("municipality"),
		GPSCode:      col("gps_code"),
		IATACode:     col("iata_code"),
		LocalCode:    col("local_code"),
		Coordinates:  col("coordinates"),
	}

	if raw := strings.TrimSpace(col("elevation_ft")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return models.Airport{}, &FieldError{Field: "elevation_ft", Value: raw, Err: err}
		}
		r.ElevationFt = int32(v)
	}

	return r.airport()
}
