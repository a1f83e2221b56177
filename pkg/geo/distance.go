package geo

import (
	"sort"

	"github.com/paulmach/orb/geo"

	"airport/models"
)

// Distance returns the great-circle distance in meters.
func Distance(a, b models.Coords) float64 {
	return geo.DistanceHaversine(a.Location(), b.Location())
}

// Ranked pairs an airport with its distance from a query point.
type Ranked struct {
	Airport        models.Airport
	DistanceMeters float64
}

// Nearest orders airports by distance from origin, closest first. Ties keep
// input order. limit <= 0 returns every airport.
func Nearest(origin models.Coords, airports []models.Airport, limit int) []Ranked {
	ranked := make([]Ranked, 0, len(airports))
	for _, a := range airports {
		ranked = append(ranked, Ranked{Airport: a, DistanceMeters: Distance(origin, a.Coordinates)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceMeters < ranked[j].DistanceMeters
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}
