package brief

import (
	"context"
	"errors"
	"testing"

	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/scan"
)

type fakeScanner struct {
	calls int
	err   error
}

func (f *fakeScanner) Scan(ctx context.Context, region, topic string) (*scan.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &scan.Result{ProcessedCount: 3, AddedCount: 2, Message: "ok"}, nil
}

type fakeAggregator struct {
	stats map[domain.Category]int
	calls int
}

func (f *fakeAggregator) Aggregate(ctx context.Context, region string) (map[domain.Category]int, error) {
	f.calls++
	return f.stats, nil
}

type fakeGenerator struct {
	text  string
	err   error
	stats map[domain.Category]int
}

func (f *fakeGenerator) Compose(ctx context.Context, region, topic string, stats map[domain.Category]int) (string, error) {
	f.stats = stats
	return f.text, f.err
}

func TestBrief_CountEqualsStatsSum(t *testing.T) {
	scanner := &fakeScanner{}
	aggregator := &fakeAggregator{stats: map[domain.Category]int{
		domain.CategorySOS:     2,
		domain.CategoryShelter: 1,
		domain.CategoryInfo:    4,
	}}
	generator := &fakeGenerator{text: "All quiet-ish."}

	composer := NewComposer(scanner, aggregator, generator)
	summary, err := composer.Brief(context.Background(), "California", "wildfire")
	if err != nil {
		t.Fatalf("brief failed: %v", err)
	}

	if summary.IncidentCount != 7 {
		t.Errorf("Expected incident_count 7 (sum of stats), got %d", summary.IncidentCount)
	}
	if summary.Summary != "All quiet-ish." {
		t.Errorf("Unexpected summary text: %q", summary.Summary)
	}
	if summary.Region != "California" || summary.Topic != "wildfire" {
		t.Errorf("Expected region/topic echoed, got %+v", summary)
	}
	if generator.stats[domain.CategorySOS] != 2 {
		t.Errorf("Expected stats passed through to the generator, got %v", generator.stats)
	}
}

func TestBrief_ScansBeforeAggregating(t *testing.T) {
	scanner := &fakeScanner{}
	aggregator := &fakeAggregator{stats: map[domain.Category]int{}}
	composer := NewComposer(scanner, aggregator, &fakeGenerator{})

	if _, err := composer.Brief(context.Background(), "California", "wildfire"); err != nil {
		t.Fatalf("brief failed: %v", err)
	}
	if scanner.calls != 1 {
		t.Errorf("Expected exactly one scan per brief, got %d", scanner.calls)
	}
	if aggregator.calls != 1 {
		t.Errorf("Expected exactly one aggregation per brief, got %d", aggregator.calls)
	}
}

func TestBrief_ScanFailurePropagates(t *testing.T) {
	composer := NewComposer(&fakeScanner{err: errors.New("search down")},
		&fakeAggregator{}, &fakeGenerator{})

	if _, err := composer.Brief(context.Background(), "California", "wildfire"); err == nil {
		t.Fatal("Expected scan failure to propagate")
	}
}

func TestBrief_GeneratorFailureFallsBack(t *testing.T) {
	aggregator := &fakeAggregator{stats: map[domain.Category]int{domain.CategoryInfo: 1}}
	composer := NewComposer(&fakeScanner{}, aggregator,
		&fakeGenerator{err: errors.New("model down")})

	summary, err := composer.Brief(context.Background(), "California", "wildfire")
	if err != nil {
		t.Fatalf("Expected generator failure to degrade, got %v", err)
	}
	if summary.Summary != fallbackSummary {
		t.Errorf("Expected fallback summary, got %q", summary.Summary)
	}
	if summary.IncidentCount != 1 {
		t.Errorf("Expected counts intact despite generator failure, got %d", summary.IncidentCount)
	}
}
