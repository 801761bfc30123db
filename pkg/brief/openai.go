package brief

import (
	"context"
	"encoding/json"
	"fmt"

	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/openai"
)

// OpenAIGenerator writes the brief narrative with an OpenAI chat model.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator creates a Generator backed by the given chat client.
func NewOpenAIGenerator(client *openai.Client) *OpenAIGenerator {
	return &OpenAIGenerator{client: client}
}

// Compose asks the model for a markdown situation brief built on the
// aggregated stats.
func (g *OpenAIGenerator) Compose(ctx context.Context, region, topic string, stats map[domain.Category]int) (string, error) {
	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}

	prompt := fmt.Sprintf(`Generate a concise, professional situation brief for %s regarding %s.

Incident Stats:
%s

Instructions:
- Start with a high-level summary of the situation (1-2 paragraphs).
- If there are SOS incidents, highlight them urgently.
- If there are SHELTERs, mention them.
- If mostly INFO/0 incidents, state clearly that there is no major active crisis detected but advise caution.
- Provide 3 bullet points of safety advice.
- Format as markdown.`, region, topic, string(statsJSON))

	text, err := g.client.Complete(ctx, prompt, false)
	if err != nil {
		return "", fmt.Errorf("compose brief: %w", err)
	}
	return text, nil
}
