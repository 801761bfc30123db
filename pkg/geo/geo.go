// Package geo implements the great-circle math behind the store's radius
// queries: haversine distance, coordinate validation, and the bounding box
// used to prefilter candidates before the exact distance pass.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the north-south span of one degree of latitude on the
// same sphere the haversine distance uses. Deriving it from EarthRadiusKm
// keeps RadiusBox an over-approximation of the haversine circle; a larger
// per-degree figure would shrink the box and drop rim points.
const kmPerDegreeLat = EarthRadiusKm * math.Pi / 180

// ValidCoords reports whether lat/lon form a usable WGS84 coordinate.
func ValidCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceKm returns the great-circle distance in kilometers between two
// points given as (lat, lon) degree pairs.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox is a lat/lon rectangle. It over-approximates a radius circle
// so candidates can be cheaply prefiltered; the haversine pass makes the
// final call.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// RadiusBox returns a box guaranteed to contain every point within radiusKm
// of (lat, lon). Near the poles or across the antimeridian the longitude
// span degenerates to the full [-180, 180] range rather than wrapping.
func RadiusBox(lat, lon, radiusKm float64) BoundingBox {
	latDelta := radiusKm / kmPerDegreeLat
	box := BoundingBox{
		MinLat: math.Max(lat-latDelta, -90),
		MaxLat: math.Min(lat+latDelta, 90),
		MinLon: -180,
		MaxLon: 180,
	}

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat <= 0 {
		return box
	}
	lonDelta := radiusKm / (kmPerDegreeLat * cosLat)
	if lonDelta >= 180 || lon-lonDelta < -180 || lon+lonDelta > 180 {
		return box
	}
	box.MinLon = lon - lonDelta
	box.MaxLon = lon + lonDelta
	return box
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
