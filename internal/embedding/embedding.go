package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider maps text to a fixed-length vector. Identical input must produce identical output.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Describer is implemented by providers that can report which backend and model they use.
type Describer interface {
	Describe() string
}

var (
	ErrUnknownProvider = errors.New("unknown embedding provider")
	ErrEmptyEmbedding  = errors.New("provider returned empty embedding")
)

const (
	ProviderHashing = "hashing"
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
)

// Config selects and configures a Provider.
type Config struct {
	Provider      string
	Model         string
	Dimension     int
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaBaseURL string
}

// New builds the provider named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderHashing:
		return NewHashingProvider(cfg.Dimension), nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.Dimension)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL)
	case ProviderOllama:
		return NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model, cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Describe returns a short label for p, used in health output and logs.
func Describe(p Provider) string {
	if p == nil {
		return "none"
	}
	if d, ok := p.(Describer); ok {
		return d.Describe()
	}
	return fmt.Sprintf("%T", p)
}

func matchDimension(v []float32, target int) []float32 {
	if target <= 0 || len(v) == target {
		return v
	}
	if len(v) > target {
		return v[:target]
	}
	out := make([]float32, target)
	copy(out, v)
	return out
}
