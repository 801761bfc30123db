package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTavilyExtract_Batch(t *testing.T) {
	var gotReq tavilyExtractRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"url":"https://example.com/a","raw_content":"article text a"},
			{"url":"https://example.com/unrequested","raw_content":"should be ignored"}
		]}`))
	}))
	defer server.Close()

	extractor := newTavilyExtractorWithURL("tv-key", server.Client(), server.URL)
	urls := []string{"https://example.com/a", "https://example.com/b"}

	contents, err := extractor.Extract(context.Background(), urls)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if len(gotReq.URLs) != 2 {
		t.Errorf("Expected one batch call with both urls, got %v", gotReq.URLs)
	}
	if contents["https://example.com/a"] != "article text a" {
		t.Errorf("Unexpected content for a: %q", contents["https://example.com/a"])
	}
	if text, ok := contents["https://example.com/b"]; !ok || text != "" {
		t.Errorf("Expected missing result mapped to empty string, got %q (present=%v)", text, ok)
	}
	if _, ok := contents["https://example.com/unrequested"]; ok {
		t.Error("Unrequested URL leaked into the result map")
	}
}

func TestTavilyExtract_ProviderFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := newTavilyExtractorWithURL("tv-key", server.Client(), server.URL)
	urls := []string{"https://example.com/a"}

	contents, err := extractor.Extract(context.Background(), urls)
	if err != nil {
		t.Fatalf("Expected provider failure to degrade, got %v", err)
	}
	if text, ok := contents["https://example.com/a"]; !ok || text != "" {
		t.Errorf("Expected empty content on provider failure, got %q", text)
	}
}

func TestTavilyExtract_EmptyInput(t *testing.T) {
	extractor := NewTavilyExtractor("tv-key", nil)
	contents, err := extractor.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(contents) != 0 {
		t.Errorf("Expected empty map for empty input, got %v", contents)
	}
}

func TestExtractText_Readability(t *testing.T) {
	html := `<html><head><title>Storm update</title></head><body>
		<article>
			<h1>Storm update</h1>
			<p>The river crested at noon and water is receding slowly across the valley.</p>
			<p>Two shelters remain open at the fairgrounds and the high school gym.</p>
			<p>Officials expect the main highway to reopen by tomorrow morning.</p>
		</article>
	</body></html>`

	text, err := ExtractText(html)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(text, "river crested") || !strings.Contains(text, "shelters remain open") {
		t.Errorf("Expected article paragraphs in extracted text, got %q", text)
	}
}

func TestExtractText_ParagraphFallback(t *testing.T) {
	html := `<html><body><p>Short flood note.</p></body></html>`

	text, err := ExtractText(html)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(text, "Short flood note.") {
		t.Errorf("Expected paragraph text, got %q", text)
	}
}

func TestExtractText_NoContent(t *testing.T) {
	if _, err := ExtractText(`<html><body><div></div></body></html>`); err == nil {
		t.Fatal("Expected error for HTML without article text")
	}
}
