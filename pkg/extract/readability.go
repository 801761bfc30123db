package extract

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"disaster-scout/pkg/httpclient"
)

// ReadabilityExtractor fetches each URL directly and extracts the article
// text locally. It is the API-key-free alternative to the Tavily extractor.
type ReadabilityExtractor struct {
	client *httpclient.HTTPClient
}

// NewReadabilityExtractor creates an extractor that fetches pages with the
// given header profile.
func NewReadabilityExtractor(clientType httpclient.ClientType) *ReadabilityExtractor {
	return &ReadabilityExtractor{client: httpclient.NewClient(clientType)}
}

// Extract fetches and extracts every URL sequentially. Per-URL failures are
// logged and map to "".
func (e *ReadabilityExtractor) Extract(ctx context.Context, urls []string) (map[string]string, error) {
	contents := make(map[string]string, len(urls))
	for _, u := range urls {
		text, err := e.extractOne(ctx, u)
		if err != nil {
			log.Printf("Extract %s failed, continuing without content: %v", u, err)
			text = ""
		}
		contents[u] = text
	}
	return contents, nil
}

func (e *ReadabilityExtractor) extractOne(ctx context.Context, url string) (string, error) {
	htmlContent, err := e.fetchHTML(ctx, url)
	if err != nil {
		return "", err
	}
	return ExtractText(htmlContent)
}

func (e *ReadabilityExtractor) fetchHTML(ctx context.Context, url string) (string, error) {
	resp, err := e.client.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	bodyStr := string(body)
	if strings.TrimSpace(bodyStr) == "" {
		return "", fmt.Errorf("server returned empty response")
	}
	return bodyStr, nil
}

// ExtractText extracts the main article text from HTML. Readability goes
// first; when it finds nothing, the goquery paragraph fallback runs.
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var parts []string
	doc.Find("article p, main p, p").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("no article text found in HTML")
	}
	return strings.Join(parts, "\n"), nil
}
