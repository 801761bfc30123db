package domain

// GeoPoint is a GeoJSON Point geometry. Coordinates is [lon, lat], in that
// order, matching the GeoJSON spec and the persisted BSON layout.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a Point from a lon/lat pair.
func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// Lon returns the longitude, or 0 if the point is malformed.
func (p GeoPoint) Lon() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

// Lat returns the latitude, or 0 if the point is malformed.
func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Feature is a GeoJSON Feature wrapping one incident.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   GeoPoint       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is the GeoJSON payload returned by the query API.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features, normalizing nil to an empty slice so
// the JSON output always carries a "features" array.
func NewFeatureCollection(features []Feature) *FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Feature converts the incident to a GeoJSON Feature. The geometry is the
// incident location; every other field becomes a property.
func (in Incident) Feature() Feature {
	return Feature{
		Type:     "Feature",
		Geometry: in.Location,
		Properties: map[string]any{
			"id":           in.ID,
			"url":          in.URL,
			"title":        in.Title,
			"content":      in.Content,
			"category":     in.Category,
			"description":  in.Description,
			"locationName": in.LocationName,
			"region":       in.Region,
			"topic":        in.Topic,
			"status":       in.Status,
			"createdAt":    in.CreatedAt,
		},
	}
}
