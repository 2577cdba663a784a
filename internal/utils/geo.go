package utils

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Pow(math.Sin(dLon/2), 2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// BoundingBox returns the min/max latitude and longitude of a box that
// contains every point within radiusKm of the center. It is a coarse
// pre-filter; callers still check the exact distance.
func BoundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusKm / 111.0 // ~111km per degree of latitude
	minLat, maxLat = lat-latDelta, lat+latDelta

	lonScale := math.Cos(radians(lat))
	if lonScale < 0.01 {
		// Near the poles every longitude is close; open the box fully.
		return minLat, maxLat, -180, 180
	}
	lonDelta := radiusKm / (111.0 * lonScale)
	return minLat, maxLat, lon - lonDelta, lon + lonDelta
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
