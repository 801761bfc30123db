package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/geo"
)

// MemoryStore is an embedded Store: an atomic url-keyed record map plus a
// bounded-candidate haversine scan for radius queries. It backs tests and
// single-process deployments; the mutex around the map is what makes
// concurrent upserts on the same URL safe.
type MemoryStore struct {
	mu    sync.RWMutex
	byURL map[string]domain.Incident
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byURL: make(map[string]domain.Incident),
		now:   time.Now,
	}
}

// UpsertByURL inserts or replaces the record for in.URL under one lock
// acquisition, so concurrent writers can neither duplicate a URL nor lose
// an update.
func (s *MemoryStore) UpsertByURL(ctx context.Context, in *domain.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byURL[in.URL]; ok {
		in.ID = existing.ID
		in.CreatedAt = existing.CreatedAt
	} else {
		in.ID = uuid.NewString()
		in.CreatedAt = s.now().UTC()
	}
	s.byURL[in.URL] = *in
	return nil
}

// Query returns matching incidents ordered by CreatedAt descending.
func (s *MemoryStore) Query(ctx context.Context, f Filter) ([]domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.Incident
	for _, in := range s.byURL {
		if matches(in, f) {
			results = append(results, in)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if f.Limit > 0 && len(results) > f.Limit {
		results = results[:f.Limit]
	}
	return results, nil
}

// Near scans candidates inside the radius bounding box, keeps those within
// the exact haversine distance, and returns them nearest-first.
func (s *MemoryStore) Near(ctx context.Context, f NearFilter) ([]NearResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	box := geo.RadiusBox(f.Lat, f.Lon, f.RadiusKm)
	var results []NearResult
	for _, in := range s.byURL {
		if f.Category != "" && in.Category != f.Category {
			continue
		}
		lat, lon := in.Location.Lat(), in.Location.Lon()
		if !box.Contains(lat, lon) {
			continue
		}
		d := geo.DistanceKm(f.Lat, f.Lon, lat, lon)
		if d > f.RadiusKm {
			continue
		}
		results = append(results, NearResult{Incident: in, DistanceKm: d})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if f.Limit > 0 && len(results) > f.Limit {
		results = results[:f.Limit]
	}
	return results, nil
}

// CountByCategory groups incidents matching the region filter by category.
func (s *MemoryStore) CountByCategory(ctx context.Context, region string) (map[domain.Category]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.Category]int)
	for _, in := range s.byURL {
		if matches(in, Filter{Region: region}) {
			counts[in.Category]++
		}
	}
	return counts, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// matches applies a Filter to one incident; Limit is handled by callers.
func matches(in domain.Incident, f Filter) bool {
	if f.Region != "" {
		needle := strings.ToLower(f.Region)
		if !strings.Contains(strings.ToLower(in.Region), needle) &&
			!strings.Contains(strings.ToLower(in.LocationName), needle) {
			return false
		}
	}
	if f.Category != "" && in.Category != f.Category {
		return false
	}
	if f.Status != "" && in.Status != f.Status {
		return false
	}
	return true
}
