package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

const tavilyExtractURL = "https://api.tavily.com/extract"

// TavilyExtractor fetches article text through the Tavily extract API in
// one batch call.
type TavilyExtractor struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// NewTavilyExtractor creates a Tavily-backed content extractor.
func NewTavilyExtractor(apiKey string, client *http.Client) *TavilyExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &TavilyExtractor{apiKey: apiKey, client: client, baseURL: tavilyExtractURL}
}

// newTavilyExtractorWithURL creates an extractor with a custom endpoint for
// testing.
func newTavilyExtractorWithURL(apiKey string, client *http.Client, url string) *TavilyExtractor {
	e := NewTavilyExtractor(apiKey, client)
	e.baseURL = url
	return e
}

type tavilyExtractRequest struct {
	APIKey string   `json:"api_key"`
	URLs   []string `json:"urls"`
}

type tavilyExtractResponse struct {
	Results []struct {
		URL        string `json:"url"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
}

// Extract requests the whole URL batch at once. Provider failures degrade
// to an all-empty mapping: the scan keeps going on titles and snippets.
func (e *TavilyExtractor) Extract(ctx context.Context, urls []string) (map[string]string, error) {
	contents := make(map[string]string, len(urls))
	for _, u := range urls {
		contents[u] = ""
	}
	if len(urls) == 0 {
		return contents, nil
	}

	bodyBytes, err := json.Marshal(tavilyExtractRequest{APIKey: e.apiKey, URLs: urls})
	if err != nil {
		return nil, fmt.Errorf("marshal extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		log.Printf("Tavily extract failed, continuing without content: %v", err)
		return contents, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Tavily extract read failed, continuing without content: %v", err)
		return contents, nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("Tavily extract returned status %d, continuing without content", resp.StatusCode)
		return contents, nil
	}

	var parsed tavilyExtractResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		log.Printf("Tavily extract parse failed, continuing without content: %v", err)
		return contents, nil
	}

	for _, r := range parsed.Results {
		if _, requested := contents[r.URL]; requested {
			contents[r.URL] = r.RawContent
		}
	}
	return contents, nil
}
