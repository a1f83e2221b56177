package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Errors returned by ParseCoords, possibly wrapped with the offending text.
var (
	ErrMissingLatitude  = errors.New("missing latitude")
	ErrBadLatitude      = errors.New("bad latitude")
	ErrMissingLongitude = errors.New("missing longitude")
	ErrBadLongitude     = errors.New("bad longitude")
)

// Coords is a latitude/longitude pair in degrees. Values are not range checked.
type Coords struct {
	Latitude  float64
	Longitude float64
}

// ParseCoords reads "<lat>, <lon>". Whitespace around each value is ignored,
// and so is anything after a second comma.
func ParseCoords(s string) (Coords, error) {
	if s == "" {
		return Coords{}, ErrMissingLatitude
	}
	parts := strings.Split(s, ",")

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coords{}, fmt.Errorf("%w: %q", ErrBadLatitude, parts[0])
	}

	if len(parts) < 2 {
		return Coords{}, fmt.Errorf("%w: %q", ErrMissingLongitude, s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coords{}, fmt.Errorf("%w: %q", ErrBadLongitude, parts[1])
	}

	return Coords{Latitude: lat, Longitude: lon}, nil
}

// Location returns the pair as an orb.Point. orb stores [lon, lat]; use
// Lat() and Lon() to read it back.
func (c Coords) Location() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

func (c Coords) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
