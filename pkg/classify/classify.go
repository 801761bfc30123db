// Package classify decides whether a piece of news text describes a
// relevant incident for a region, and extracts the structured fields the
// pipeline stores.
package classify

import "context"

// Result is the structured classifier output for one article.
type Result struct {
	IsRelevant   bool   `json:"is_relevant"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	LocationName string `json:"location_name"`
}

// Classifier analyzes article text in the context of a region. The contract
// fails closed: implementations return IsRelevant=false rather than an
// error when the provider misbehaves, so a flaky model skips items instead
// of inventing incidents.
type Classifier interface {
	Classify(ctx context.Context, content, region string) (*Result, error)
}
