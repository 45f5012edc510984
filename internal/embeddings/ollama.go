package embeddings

import (
	"context"
	"fmt"
)

const (
	// DefaultOllamaURL is where a local Ollama listens.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultOllamaModel is the embedding model pulled by default.
	DefaultOllamaModel = "nomic-embed-text"
)

// OllamaProvider embeds text with an Ollama server.
type OllamaProvider struct {
	backend httpBackend
	model   string
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaProvider creates an Ollama provider. Empty arguments take the
// defaults.
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaProvider{
		backend: newHTTPBackend(baseURL, ""),
		model:   model,
	}
}

// Embed calls POST /api/embeddings.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp ollamaResponse
	if err := p.backend.postJSON(ctx, "/api/embeddings", ollamaRequest{Model: p.model, Prompt: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", ErrEmbeddingFailed)
	}
	return resp.Embedding, nil
}

// Name returns "ollama/<model>".
func (p *OllamaProvider) Name() string {
	return "ollama/" + p.model
}

// Close releases idle connections.
func (p *OllamaProvider) Close() error {
	return p.backend.close()
}
