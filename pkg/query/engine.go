// Package query answers the read side: filtered listings, radius searches,
// and category aggregation over the incident store, with results wrapped as
// GeoJSON features.
package query

import (
	"context"
	"errors"
	"fmt"

	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/geo"
	"disaster-scout/pkg/store"
)

// Defaults applied when callers omit or mangle the optional parameters.
const (
	DefaultListLimit = 100
	DefaultNearLimit = 50
	DefaultRadiusKm  = 50
)

// ErrInvalidCoordinates reports an out-of-range query point. Handlers map
// it to a client error.
var ErrInvalidCoordinates = errors.New("latitude must be in [-90, 90] and longitude in [-180, 180]")

// Engine runs read-only queries against a Store.
type Engine struct {
	store store.Store
}

// NewEngine creates a query engine over the store.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st}
}

// ListOptions filters a listing. Zero values mean "no constraint"; a
// non-positive Limit falls back to DefaultListLimit.
type ListOptions struct {
	Region   string
	Category string
	Status   string
	Limit    int
}

// List returns matching incidents as a FeatureCollection ordered by
// creation time, newest first.
func (e *Engine) List(ctx context.Context, opts ListOptions) (*domain.FeatureCollection, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	incidents, err := e.store.Query(ctx, store.Filter{
		Region:   opts.Region,
		Category: domain.Category(opts.Category),
		Status:   domain.Status(opts.Status),
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	features := make([]domain.Feature, 0, len(incidents))
	for _, in := range incidents {
		features = append(features, in.Feature())
	}
	return domain.NewFeatureCollection(features), nil
}

// NearOptions describes a radius query. Lat and Lon are required and
// validated; RadiusKm and Limit fall back to defaults when non-positive.
type NearOptions struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
	Category string
	Limit    int
}

// Near returns incidents within the radius as a FeatureCollection ordered
// nearest-first, each feature carrying a distance_km property.
func (e *Engine) Near(ctx context.Context, opts NearOptions) (*domain.FeatureCollection, error) {
	if !geo.ValidCoords(opts.Lat, opts.Lon) {
		return nil, ErrInvalidCoordinates
	}
	radius := opts.RadiusKm
	if radius < 0 {
		radius = DefaultRadiusKm
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultNearLimit
	}

	results, err := e.store.Near(ctx, store.NearFilter{
		Lat:      opts.Lat,
		Lon:      opts.Lon,
		RadiusKm: radius,
		Category: domain.Category(opts.Category),
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("near incidents: %w", err)
	}

	features := make([]domain.Feature, 0, len(results))
	for _, r := range results {
		f := r.Incident.Feature()
		f.Properties["distance_km"] = r.DistanceKm
		features = append(features, f)
	}
	return domain.NewFeatureCollection(features), nil
}

// Aggregate counts matching incidents per category under the same region
// substring match List uses.
func (e *Engine) Aggregate(ctx context.Context, region string) (map[domain.Category]int, error) {
	counts, err := e.store.CountByCategory(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("aggregate incidents: %w", err)
	}
	return counts, nil
}
