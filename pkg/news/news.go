// Package news finds candidate articles for a region/topic scan.
package news

import "context"

// Candidate is a raw search result awaiting extraction and classification.
type Candidate struct {
	URL     string
	Title   string
	Snippet string
}

// Source searches for recent news about a topic in a region. The returned
// order is the provider's relevance order; the pipeline preserves it.
type Source interface {
	Search(ctx context.Context, region, topic string) ([]Candidate, error)
}

// DefaultMaxResults bounds how many candidates one scan pulls from a
// provider, which also bounds the scan's wall-clock time.
const DefaultMaxResults = 5

// Query builds the provider search query for a region/topic pair.
func Query(region, topic string) string {
	return topic + " in " + region + ". Focus on local flooding, shelters, SOS, evacuations, closures, and critical impacts."
}
