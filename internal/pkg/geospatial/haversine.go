package geospatial

import "math"

// EarthRadiusKm is the mean Earth radius used for all spherical geometry.
const EarthRadiusKm = 6371.0

// MinKmPerDegreeLat is a conservative lower bound on the ground distance
// spanned by one degree of latitude. Any two points whose latitudes differ by
// d degrees are at least d*MinKmPerDegreeLat kilometres apart, which makes it
// safe for prefilters that must never discard an in-range pair.
const MinKmPerDegreeLat = 110.567

// HaversineKm calculates the great-circle distance in kilometres between two
// points on the mean-radius sphere.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
