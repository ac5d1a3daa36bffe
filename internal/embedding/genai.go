package embedding

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"marketintel/internal/core"
)

// GenAIEmbedder adapts google.golang.org/genai's embedding endpoint to the
// Embedder interface. The client is constructed lazily and once, mirroring
// the single-process-wide model handle pattern used for heavyweight ML
// capabilities.
type GenAIEmbedder struct {
	apiKey     string
	model      string
	dimensions int32

	once   sync.Once
	client *genai.Client
	initErr error
}

// NewGenAIEmbedder builds an embedder bound to apiKey/model. The underlying
// client is not created until the first Embed call.
func NewGenAIEmbedder(apiKey, model string, dimensions int32) *GenAIEmbedder {
	if model == "" {
		model = "gemini-embedding-001"
	}
	if dimensions <= 0 {
		dimensions = 768
	}
	return &GenAIEmbedder{apiKey: apiKey, model: model, dimensions: dimensions}
}

func (e *GenAIEmbedder) init(ctx context.Context) {
	e.once.Do(func() {
		if e.apiKey == "" {
			e.initErr = fmt.Errorf("embedding: no API key configured")
			return
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  e.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			e.initErr = fmt.Errorf("embedding: creating genai client: %w", err)
			return
		}
		e.client = client
	})
}

// Embed returns a unit-L2 vector for text via the embedding model.
func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.init(ctx)
	if e.initErr != nil {
		return nil, e.initErr
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	}}
	config := &genai.EmbedContentConfig{OutputDimensionality: &e.dimensions}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embedding: embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("embedding: no embedding values returned")
	}

	raw := resp.Embeddings[0].Values
	vec := make([]float64, len(raw))
	for i, v := range raw {
		vec[i] = float64(v)
	}
	return core.Normalize(vec), nil
}
