package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"disaster-scout/pkg/openai"
)

// OpenAIClassifier classifies article text with an OpenAI chat model in
// JSON mode.
type OpenAIClassifier struct {
	client *openai.Client
}

// NewOpenAIClassifier creates a Classifier backed by the given chat client.
func NewOpenAIClassifier(client *openai.Client) *OpenAIClassifier {
	return &OpenAIClassifier{client: client}
}

// Classify asks the model for a relevance verdict and structured fields.
// Any provider or parse failure logs and fails closed with
// IsRelevant=false.
func (c *OpenAIClassifier) Classify(ctx context.Context, content, region string) (*Result, error) {
	prompt := fmt.Sprintf(`Analyze the following news content related to %s.
Determine if this is a relevant disaster/emergency/incident for this region.

Classify into one of these categories:
- SOS: People in danger, need immediate help, life-threatening.
- SHELTER: Locations of shelters, aid centers, resources.
- INFO: General updates, closures, advisories, weather warnings, minor disruptions.
- OTHER: Not relevant or duplicate.

Extract the following structured data in JSON format:
- is_relevant: boolean (true if it matches SOS, SHELTER, or INFO for the region)
- category: string (SOS, SHELTER, INFO, or OTHER)
- description: string (concise summary of the situation, max 2 sentences)
- location_name: string (specific location mentioned like "Bay Ridge", "Nha Trang", or the region itself if general)

Content:
%s`, region, content)

	text, err := c.client.Complete(ctx, prompt, true)
	if err != nil {
		log.Printf("Classification failed, treating item as irrelevant: %v", err)
		return &Result{IsRelevant: false}, nil
	}

	var result Result
	if err := json.Unmarshal([]byte(openai.StripMarkdownCodeBlock(text)), &result); err != nil {
		log.Printf("Classification JSON parse failed, treating item as irrelevant: %v", err)
		return &Result{IsRelevant: false}, nil
	}
	return &result, nil
}
