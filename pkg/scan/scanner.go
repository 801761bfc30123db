// Package scan orchestrates one ingestion run: search news, extract
// content, classify, geocode, and upsert the survivors into the store.
// Candidates are processed sequentially in the order the news source
// returned them, and a failure on one item never aborts the run.
package scan

import (
	"context"
	"fmt"
	"log"

	"disaster-scout/pkg/classify"
	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/extract"
	"disaster-scout/pkg/geo"
	"disaster-scout/pkg/geocode"
	"disaster-scout/pkg/news"
	"disaster-scout/pkg/store"
)

// maxClassifyInput bounds the text handed to the classifier, which has its
// own input budget.
const maxClassifyInput = 5000

// Result summarizes one scan run. ProcessedCount counts every candidate;
// AddedCount counts the ones that made it into the store.
type Result struct {
	ProcessedCount int    `json:"processedCount"`
	AddedCount     int    `json:"addedCount"`
	Message        string `json:"message"`
}

// Scanner runs ingestion scans against a fixed set of collaborators.
type Scanner struct {
	source     news.Source
	extractor  extract.Extractor
	classifier classify.Classifier
	geocoder   geocode.Geocoder
	store      store.Store
}

// NewScanner wires a scanner from its collaborators and the store.
func NewScanner(source news.Source, extractor extract.Extractor, classifier classify.Classifier, geocoder geocode.Geocoder, st store.Store) *Scanner {
	return &Scanner{
		source:     source,
		extractor:  extractor,
		classifier: classifier,
		geocoder:   geocoder,
		store:      st,
	}
}

// Scan ingests current news for the region/topic. Only a news-search
// failure propagates; everything after that degrades per item.
func (s *Scanner) Scan(ctx context.Context, region, topic string) (*Result, error) {
	candidates, err := s.source.Search(ctx, region, topic)
	if err != nil {
		return nil, fmt.Errorf("search news for %s/%s: %w", region, topic, err)
	}
	if len(candidates) == 0 {
		return &Result{
			Message: fmt.Sprintf("No news found for %s in %s.", topic, region),
		}, nil
	}

	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		urls = append(urls, c.URL)
	}
	contents, err := s.extractor.Extract(ctx, urls)
	if err != nil {
		// Extraction is best-effort; classification falls back to titles
		// and snippets.
		log.Printf("Content extraction failed, continuing with snippets: %v", err)
		contents = map[string]string{}
	}

	result := &Result{}
	for _, candidate := range candidates {
		result.ProcessedCount++
		if err := s.processCandidate(ctx, candidate, contents[candidate.URL], region, topic); err != nil {
			log.Printf("Skipping %s: %v", candidate.URL, err)
			continue
		}
		result.AddedCount++
	}

	result.Message = fmt.Sprintf("Scanned %d articles for %s in %s. Added/Updated %d relevant incidents.",
		result.ProcessedCount, topic, region, result.AddedCount)
	return result, nil
}

// skipError marks the non-failure skips (irrelevant item, unresolvable
// location) so the caller can log them the same way as real failures.
type skipError string

func (e skipError) Error() string { return string(e) }

func (s *Scanner) processCandidate(ctx context.Context, candidate news.Candidate, rawContent, region, topic string) error {
	text := rawContent
	if text == "" {
		text = candidate.Snippet
	}
	input := classifyInput(candidate.Title, text)

	classification, err := s.classifier.Classify(ctx, input, region)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	if !classification.IsRelevant {
		return skipError("not relevant")
	}

	locationName := classification.LocationName
	if locationName == "" {
		locationName = region
	}
	point, err := s.geocoder.Resolve(ctx, locationName, region)
	if err != nil {
		return fmt.Errorf("geocode %q: %w", locationName, err)
	}
	if point == nil {
		// No coordinates means no record, ever.
		return skipError(fmt.Sprintf("no coordinates for %q", locationName))
	}
	if !geo.ValidCoords(point.Lat(), point.Lon()) {
		return skipError(fmt.Sprintf("out-of-range coordinates (%v, %v) for %q",
			point.Lat(), point.Lon(), locationName))
	}

	incident := &domain.Incident{
		URL:          candidate.URL,
		Title:        candidate.Title,
		Content:      domain.TruncateContent(text),
		Category:     domain.ParseCategory(classification.Category),
		Description:  classification.Description,
		LocationName: locationName,
		Region:       region,
		Topic:        topic,
		Location:     *point,
		Status:       domain.StatusActive,
	}
	if err := s.store.UpsertByURL(ctx, incident); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// classifyInput combines title and body text, bounded to the classifier's
// input budget.
func classifyInput(title, text string) string {
	input := title
	if text != "" {
		if input != "" {
			input += "\n\n"
		}
		input += text
	}
	return domain.TruncateString(input, maxClassifyInput)
}
