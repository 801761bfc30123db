package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"disaster-scout/pkg/openai"
)

func chatReply(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(reply); err != nil {
			t.Errorf("Encode reply: %v", err)
		}
	}
}

func TestClassify(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Decode request: %v", err)
		}
		chatReply(t, `{"is_relevant":true,"category":"SHELTER","description":"Shelter opened at the fairgrounds.","location_name":"Sacramento"}`)(w, r)
	}))
	defer server.Close()

	client := openai.NewClientWithURL("sk-test", "", server.Client(), server.URL)
	classifier := NewOpenAIClassifier(client)

	result, err := classifier.Classify(context.Background(), "Shelter opened downtown.", "California")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	if !result.IsRelevant || result.Category != "SHELTER" {
		t.Errorf("Unexpected result: %+v", result)
	}
	if result.LocationName != "Sacramento" {
		t.Errorf("Unexpected location name: %q", result.LocationName)
	}

	if format, ok := gotBody["response_format"].(map[string]any); !ok || format["type"] != "json_object" {
		t.Errorf("Expected json_object response format, got %v", gotBody["response_format"])
	}
	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("Expected one message, got %v", gotBody["messages"])
	}
	prompt := messages[0].(map[string]any)["content"].(string)
	if !strings.Contains(prompt, "California") || !strings.Contains(prompt, "Shelter opened downtown.") {
		t.Errorf("Expected region and content in prompt, got %q", prompt)
	}
}

func TestClassify_FencedJSON(t *testing.T) {
	fenced := "```json\n{\"is_relevant\":true,\"category\":\"SOS\",\"description\":\"People trapped.\",\"location_name\":\"Bay Ridge\"}\n```"
	server := httptest.NewServer(chatReply(t, fenced))
	defer server.Close()

	client := openai.NewClientWithURL("sk-test", "", server.Client(), server.URL)
	result, err := NewOpenAIClassifier(client).Classify(context.Background(), "content", "New York")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if !result.IsRelevant || result.Category != "SOS" {
		t.Errorf("Expected fenced JSON parsed, got %+v", result)
	}
}

func TestClassify_ProviderFailureFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := openai.NewClientWithURL("sk-test", "", server.Client(), server.URL)
	result, err := NewOpenAIClassifier(client).Classify(context.Background(), "content", "California")
	if err != nil {
		t.Fatalf("Expected provider failure to fail closed, got %v", err)
	}
	if result.IsRelevant {
		t.Error("Expected IsRelevant=false on provider failure")
	}
}

func TestClassify_GarbageReplyFailsClosed(t *testing.T) {
	server := httptest.NewServer(chatReply(t, "I could not classify that article."))
	defer server.Close()

	client := openai.NewClientWithURL("sk-test", "", server.Client(), server.URL)
	result, err := NewOpenAIClassifier(client).Classify(context.Background(), "content", "California")
	if err != nil {
		t.Fatalf("Expected parse failure to fail closed, got %v", err)
	}
	if result.IsRelevant {
		t.Error("Expected IsRelevant=false on unparseable reply")
	}
}
