package geo

import "strings"

var continents = map[string]string{
	"AF": "Africa",
	"AN": "Antarctica",
	"AS": "Asia",
	"EU": "Europe",
	"NA": "North America",
	"OC": "Oceania",
	"SA": "South America",
}

func IsContinent(code string) bool {
	_, ok := continents[strings.ToUpper(code)]
	return ok
}

// ContinentName resolves the two-letter continent code used by the
// airport-codes dataset.
func ContinentName(code string) (string, bool) {
	name, ok := continents[strings.ToUpper(code)]
	return name, ok
}

// SplitRegion splits an ISO 3166-2 region such as "US-NY" into its country
// and subdivision parts. Regions without a dash return an empty subdivision.
func SplitRegion(region string) (country, subdivision string) {
	region = strings.TrimSpace(region)
	country, subdivision, _ = strings.Cut(region, "-")
	return country, subdivision
}
