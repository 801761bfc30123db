// Package geocode resolves human-readable place names to coordinates.
package geocode

import (
	"context"

	"disaster-scout/pkg/domain"
)

// Geocoder resolves a location name to a point. When the specific name
// cannot be resolved and fallback is a different string, implementations
// try the fallback before giving up. An unresolvable name returns
// (nil, nil): no coordinates is not an error, it just means the caller
// must drop the item.
type Geocoder interface {
	Resolve(ctx context.Context, name, fallback string) (*domain.GeoPoint, error)
}
