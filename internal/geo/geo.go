package geo

import "math"

// EarthRadiusKm is the spherical Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// averageSpeedKmh is the assumed urban travel speed for ETA estimates.
const averageSpeedKmh = 30.0

// Distance returns the great-circle distance in kilometers between two
// coordinates using the Haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLng := toRadians(lng2 - lng1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ETAMinutes converts a distance to estimated travel minutes, rounded up.
func ETAMinutes(distanceKm float64) int {
	return int(math.Ceil(distanceKm / averageSpeedKmh * 60))
}

// SquaredDelta is the planar squared-coordinate metric used to rank
// candidates: (lat2-lat1)^2 + (lng2-lng1)^2, in raw degrees. It is not a
// geodesic distance; it exists because candidate ordering is defined on this
// exact key, and reproducing it keeps ranking results stable for clients.
func SquaredDelta(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	return dLat*dLat + dLng*dLng
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
