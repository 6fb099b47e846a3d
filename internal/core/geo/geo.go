// Package geo holds the coordinate model shared by the travel oracle and
// the solver. Locations are flat value types; the snapshot loader copies
// coordinates in so the optimizer never touches CRM graph nodes.
package geo

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// Location is a geocoded point with a case-folded city tag used for soft
// batching of nearby stops.
type Location struct {
	Lat     float64
	Lon     float64
	CityTag string
}

var folder = cases.Fold()

// FoldCityTag normalizes a raw city string into a batching tag.
func FoldCityTag(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// New validates coordinate ranges and folds the city tag.
func New(lat, lon float64, city string) (Location, error) {
	if lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("longitude %v out of range", lon)
	}
	return Location{Lat: lat, Lon: lon, CityTag: FoldCityTag(city)}, nil
}

// SameCoords reports whether two locations share coordinates.
// Quantized to ~1m so float jitter from different sources still matches.
func (l Location) SameCoords(o Location) bool {
	return quantize(l.Lat) == quantize(o.Lat) && quantize(l.Lon) == quantize(o.Lon)
}

// Key is a stable map key for the location's coordinates.
func (l Location) Key() string {
	return fmt.Sprintf("%d,%d", quantize(l.Lat), quantize(l.Lon))
}

func quantize(v float64) int64 { return int64(math.Round(v * 1e5)) }

const earthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between two points in km.
func HaversineKm(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
