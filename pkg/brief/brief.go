// Package brief composes a narrative situation summary for a region/topic.
// A brief deliberately starts with a fresh scan so it reflects current news
// rather than just stored history.
package brief

import (
	"context"
	"log"

	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/scan"
)

// fallbackSummary stands in when the narrative generator is unavailable;
// the counts are still accurate.
const fallbackSummary = "Unable to generate brief."

// Generator turns aggregated incident stats into narrative text.
type Generator interface {
	Compose(ctx context.Context, region, topic string, stats map[domain.Category]int) (string, error)
}

// Scanner is the slice of the ingestion pipeline the composer needs.
type Scanner interface {
	Scan(ctx context.Context, region, topic string) (*scan.Result, error)
}

// Aggregator is the slice of the query engine the composer needs.
type Aggregator interface {
	Aggregate(ctx context.Context, region string) (map[domain.Category]int, error)
}

// Summary is the composed brief for one region/topic.
type Summary struct {
	Region        string                  `json:"region"`
	Topic         string                  `json:"topic"`
	IncidentCount int                     `json:"incident_count"`
	Summary       string                  `json:"summary"`
	Stats         map[domain.Category]int `json:"stats"`
}

// Composer builds briefs from a scanner, an aggregator, and a generator.
type Composer struct {
	scanner    Scanner
	aggregator Aggregator
	generator  Generator
}

// NewComposer wires a brief composer.
func NewComposer(scanner Scanner, aggregator Aggregator, generator Generator) *Composer {
	return &Composer{scanner: scanner, aggregator: aggregator, generator: generator}
}

// Brief scans the region/topic, aggregates the resulting incidents by
// category, and delegates the narrative to the generator. The incident
// count is the sum of the per-category counts. Generator failures degrade
// to a fallback summary rather than failing the brief.
func (c *Composer) Brief(ctx context.Context, region, topic string) (*Summary, error) {
	if _, err := c.scanner.Scan(ctx, region, topic); err != nil {
		return nil, err
	}

	stats, err := c.aggregator.Aggregate(ctx, region)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range stats {
		total += count
	}

	text, err := c.generator.Compose(ctx, region, topic, stats)
	if err != nil {
		log.Printf("Brief generation failed for %s/%s: %v", region, topic, err)
		text = fallbackSummary
	}

	return &Summary{
		Region:        region,
		Topic:         topic,
		IncidentCount: total,
		Summary:       text,
		Stats:         stats,
	}, nil
}
