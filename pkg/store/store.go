// Package store persists incidents and answers the filtered, spatial, and
// aggregated reads the query engine is built on. Every backend guarantees
// the same invariants: at most one incident per URL, upserts that preserve
// id and createdAt, and distance-ordered radius queries.
package store

import (
	"context"

	"disaster-scout/pkg/domain"
)

// Filter narrows Query and CountByCategory results. Zero values mean
// "no constraint".
type Filter struct {
	// Region is matched case-insensitively as a substring against either
	// the incident's region or its locationName.
	Region string
	// Category and Status are exact matches.
	Category domain.Category
	Status   domain.Status
	// Limit bounds the result count; non-positive means unlimited.
	Limit int
}

// NearFilter describes a radius query around a point.
type NearFilter struct {
	Lat, Lon float64
	RadiusKm float64
	Category domain.Category
	Limit    int
}

// NearResult pairs an incident with its great-circle distance from the
// query point.
type NearResult struct {
	Incident   domain.Incident
	DistanceKm float64
}

// Store is the incident persistence contract.
type Store interface {
	// UpsertByURL atomically inserts the incident or, when one with the
	// same URL exists, replaces every field except ID and CreatedAt.
	// On return the incident's ID and CreatedAt reflect the stored record.
	UpsertByURL(ctx context.Context, in *domain.Incident) error

	// Query returns matching incidents ordered by CreatedAt descending.
	Query(ctx context.Context, f Filter) ([]domain.Incident, error)

	// Near returns incidents within f.RadiusKm of (f.Lat, f.Lon), ordered
	// by ascending distance. A radius of 0 matches only coincident points.
	Near(ctx context.Context, f NearFilter) ([]NearResult, error)

	// CountByCategory groups incidents matching the region filter by
	// category. Categories with no incidents are absent from the map.
	CountByCategory(ctx context.Context, region string) (map[domain.Category]int, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
