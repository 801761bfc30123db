// Package openai is a minimal chat-completions client. The classifier and
// the brief generator share it; nothing else of the API surface is needed.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// Client calls the OpenAI chat completions endpoint.
type Client struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

// NewClient creates a chat client for the given model.
func NewClient(apiKey, model string, httpClient *http.Client) *Client {
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{apiKey: apiKey, model: model, client: httpClient, baseURL: chatCompletionsURL}
}

// NewClientWithURL creates a client with a custom endpoint, for tests.
func NewClientWithURL(apiKey, model string, httpClient *http.Client, url string) *Client {
	c := NewClient(apiKey, model, httpClient)
	c.baseURL = url
	return c
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one user prompt and returns the model's message text.
// With jsonMode the request asks for a json_object response.
func (c *Client) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty chat response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// StripMarkdownCodeBlock removes a ```json ... ``` fence when the model
// wraps its JSON answer in one.
func StripMarkdownCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
