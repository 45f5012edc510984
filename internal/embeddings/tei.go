package embeddings

import (
	"context"
	"fmt"
)

// TEIProvider embeds text with a Text Embeddings Inference server.
type TEIProvider struct {
	backend httpBackend
	model   string
}

type teiRequest struct {
	Inputs   string `json:"inputs"`
	Truncate bool   `json:"truncate"`
}

// NewTEIProvider creates a TEI provider. model is informational; TEI serves
// a single model per server.
func NewTEIProvider(baseURL, model, apiKey string) *TEIProvider {
	return &TEIProvider{
		backend: newHTTPBackend(baseURL, apiKey),
		model:   model,
	}
}

// Embed calls POST /embed and returns the first vector.
func (p *TEIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var vectors [][]float32
	if err := p.backend.postJSON(ctx, "/embed", teiRequest{Inputs: text, Truncate: true}, &vectors); err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrEmbeddingFailed)
	}
	return vectors[0], nil
}

// Name returns "tei/<model>".
func (p *TEIProvider) Name() string {
	if p.model == "" {
		return "tei"
	}
	return "tei/" + p.model
}

// Close releases idle connections.
func (p *TEIProvider) Close() error {
	return p.backend.close()
}
