package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel   = "text-embedding-004"
	geminiSimilarityTask = "SEMANTIC_SIMILARITY"
)

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiProvider embeds text with the Gemini API embedding models.
type GeminiProvider struct {
	models    contentEmbedder
	modelName string
	dim       int
}

// NewGeminiProvider creates a provider backed by the Gemini API.
func NewGeminiProvider(ctx context.Context, apiKey, model string, dim int) (*GeminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGeminiProvider(client.Models, model, dim), nil
}

func newGeminiProvider(models contentEmbedder, model string, dim int) *GeminiProvider {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{models: models, modelName: model, dim: dim}
}

// Embed implements Provider.
func (g *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini provider is not initialized")
	}

	cfg := &genai.EmbedContentConfig{TaskType: geminiSimilarityTask}
	if g.dim > 0 {
		d := int32(g.dim)
		cfg.OutputDimensionality = &d
	}

	resp, err := g.models.EmbedContent(ctx, g.modelName, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini: %w", ErrEmptyEmbedding)
	}
	return matchDimension(resp.Embeddings[0].Values, g.dim), nil
}

// Describe implements Describer.
func (g *GeminiProvider) Describe() string {
	return "gemini/" + g.modelName
}
