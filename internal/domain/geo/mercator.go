package geo

import "math"

// EarthRadiusMeters is the spherical Earth radius shared by the Mercator
// projection and Haversine distance.
const EarthRadiusMeters = 6_378_137.0

// Projected is a planar coordinate in spherical Mercator meters, the
// projection used for on-screen rendering.
type Projected struct {
	X float64
	Y float64
}

// ToScreen projects longitude/latitude (degrees) to spherical Mercator.
// Input ranges are the caller's responsibility; values are never clamped
// or wrapped here.
func ToScreen(lonDeg, latDeg float64) Projected {
	x := EarthRadiusMeters * lonDeg * math.Pi / 180
	y := EarthRadiusMeters * math.Log(math.Tan(math.Pi/4+latDeg*math.Pi/360))
	return Projected{X: x, Y: y}
}

// ToGeo is the exact inverse of ToScreen up to floating-point rounding
// (round-trip error below 1e-9 degrees).
func ToGeo(p Projected) (lonDeg, latDeg float64) {
	lonDeg = p.X / EarthRadiusMeters * 180 / math.Pi
	latDeg = (2*math.Atan(math.Exp(p.Y/EarthRadiusMeters)) - math.Pi/2) * 180 / math.Pi
	return lonDeg, latDeg
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
