package llmsummary

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// GenAIGenerator is the production Generator, lazily initialized exactly
// once per process the same way the embedding client is.
type GenAIGenerator struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGenAIGenerator(apiKey, model string) *GenAIGenerator {
	if model == "" {
		model = defaultModel
	}
	return &GenAIGenerator{apiKey: apiKey, model: model}
}

func (g *GenAIGenerator) init(ctx context.Context) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
}

func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("llmsummary: no API key configured")
	}
	g.init(ctx)
	if g.initErr != nil {
		return "", fmt.Errorf("llmsummary: creating client: %w", g.initErr)
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("llmsummary: generating content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("llmsummary: empty response")
	}
	return text, nil
}
