// internal/common/embeddings/genai.go
package embeddings

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"google.golang.org/genai"
)

// Gemini rejects embedding requests with more than 100 contents.
const genaiMaxBatch = 100

type GenAIConfig struct {
	APIKey    string
	Model     string
	BatchSize int
}

// GenAIProvider embeds text with the Gemini embedding API.
type GenAIProvider struct {
	client    *genai.Client
	model     string
	batchSize int
	dimension atomic.Int64
}

func NewGenAIProvider(ctx context.Context, cfg GenAIConfig) (*GenAIProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", ErrInvalidConfig)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("%w: gemini embedding model is required", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > genaiMaxBatch {
		batchSize = genaiMaxBatch
	}

	return &GenAIProvider{client: client, model: model, batchSize: batchSize}, nil
}

func (p *GenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	out := make([][]float32, 0, len(texts))
	for _, batch := range chunk(texts, p.batchSize) {
		contents := make([]*genai.Content, 0, len(batch))
		for _, t := range batch {
			contents = append(contents, genai.Text(t)...)
		}

		resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
		}
		if resp == nil || len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: gemini returned %d embeddings for %d texts",
				ErrEmbeddingFailed, embeddingCount(resp), len(batch))
		}
		for _, e := range resp.Embeddings {
			out = append(out, e.Values)
		}
	}

	if len(out) > 0 {
		p.dimension.Store(int64(len(out[0])))
	}
	return out, nil
}

func (p *GenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimension is 0 until the first successful call.
func (p *GenAIProvider) Dimension() int {
	return int(p.dimension.Load())
}

func (p *GenAIProvider) Model() string {
	return p.model
}

func (p *GenAIProvider) Close() error {
	return nil
}

func embeddingCount(resp *genai.EmbedContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Embeddings)
}
