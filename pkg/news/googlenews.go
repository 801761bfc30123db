package news

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"
)

const googleNewsBaseURL = "https://news.google.com/rss/search"

// GoogleNewsSource searches news through the Google News RSS endpoint. It
// needs no API key, which makes it the fallback provider when Tavily is not
// configured.
type GoogleNewsSource struct {
	feedParser *gofeed.Parser
	maxResults int
	baseURL    string
}

// NewGoogleNewsSource creates a Google News RSS news source.
func NewGoogleNewsSource(maxResults int) *GoogleNewsSource {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &GoogleNewsSource{
		feedParser: gofeed.NewParser(),
		maxResults: maxResults,
		baseURL:    googleNewsBaseURL,
	}
}

// Search fetches and parses the RSS result feed for the region/topic query.
func (s *GoogleNewsSource) Search(ctx context.Context, region, topic string) ([]Candidate, error) {
	feedURL := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en",
		s.baseURL, url.QueryEscape(topic+" "+region))

	feed, err := s.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}
	if feed == nil {
		return nil, nil
	}

	candidates := make([]Candidate, 0, s.maxResults)
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Description,
		})
		if len(candidates) == s.maxResults {
			break
		}
	}
	return candidates, nil
}
