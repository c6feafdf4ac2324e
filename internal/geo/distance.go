// Package geo provides great-circle distance math for coverage analysis.
package geo

import "math"

// earthRadiusMiles is the mean Earth radius used for haversine distances.
const earthRadiusMiles = 3959.0

// DistanceMiles returns the haversine great-circle distance in miles
// between two coordinate pairs. Symmetric in its arguments; zero for
// identical points. Callers must filter out records without coordinates.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
