package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const tavilySearchURL = "https://api.tavily.com/search"

// TavilySource searches news through the Tavily search API.
type TavilySource struct {
	apiKey     string
	maxResults int
	client     *http.Client
	baseURL    string
}

// NewTavilySource creates a Tavily-backed news source.
func NewTavilySource(apiKey string, maxResults int, client *http.Client) *TavilySource {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &TavilySource{
		apiKey:     apiKey,
		maxResults: maxResults,
		client:     client,
		baseURL:    tavilySearchURL,
	}
}

// newTavilySourceWithURL creates a source with a custom endpoint for testing.
func newTavilySourceWithURL(apiKey string, maxResults int, client *http.Client, url string) *TavilySource {
	s := NewTavilySource(apiKey, maxResults, client)
	s.baseURL = url
	return s
}

type tavilySearchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilySearchResponse struct {
	Results []struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs an advanced-depth Tavily search and returns candidates in the
// provider's relevance order.
func (s *TavilySource) Search(ctx context.Context, region, topic string) ([]Candidate, error) {
	reqBody := tavilySearchRequest{
		APIKey:      s.apiKey,
		Query:       Query(region, topic),
		SearchDepth: "advanced",
		MaxResults:  s.maxResults,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tavily search: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily search returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed tavilySearchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	candidates := make([]Candidate, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		candidates = append(candidates, Candidate{URL: r.URL, Title: r.Title, Snippet: r.Content})
	}
	return candidates, nil
}
