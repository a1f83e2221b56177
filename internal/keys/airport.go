package keys

import (
	"fmt"
	"strings"

	"airport/models"
)

// sanitizeKey lowercases s and replaces characters that are awkward in
// object keys with hyphens.
func sanitizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', '?', '#':
			return '-'
		}
		return r
	}, s)
}

// Airport returns the canonical object key for an airport record.
func Airport(a models.Airport) string {
	country := sanitizeKey(a.ISOCountry)
	if country == "" {
		country = "unknown"
	}
	return fmt.Sprintf("raw_data/%s/%s.json", country, sanitizeKey(a.Ident))
}
