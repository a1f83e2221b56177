package keys

import (
	"testing"

	"airport/models"
)

func TestAirport(t *testing.T) {
	cases := []struct {
		name     string
		input    models.Airport
		expected string
	}{
		{"plain", models.Airport{Ident: "KJFK", ISOCountry: "US"}, "raw_data/us/kjfk.json"},
		{"spaces and slashes", models.Airport{Ident: "AB 12/3", ISOCountry: "GB"}, "raw_data/gb/ab-12-3.json"},
		{"no country", models.Airport{Ident: "XYZ"}, "raw_data/unknown/xyz.json"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Airport(tc.input); got != tc.expected {
				t.Fatalf("Airport(%+v) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}
