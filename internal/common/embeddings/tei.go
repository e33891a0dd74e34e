// internal/common/embeddings/tei.go
package embeddings

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	httpclient "job-recommender/internal/common/http"
)

type TEIConfig struct {
	BaseURL   string
	Model     string
	Timeout   time.Duration
	BatchSize int
}

// TEIProvider calls a HuggingFace text-embeddings-inference server.
type TEIProvider struct {
	client    *httpclient.Client
	baseURL   string
	model     string
	batchSize int
	dimension atomic.Int64
}

type teiRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

func NewTEIProvider(cfg TEIConfig) (*TEIProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &TEIProvider{
		client:    httpclient.NewClient(timeout),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
	}, nil
}

func (p *TEIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	out := make([][]float32, 0, len(texts))
	for _, batch := range chunk(texts, p.batchSize) {
		var vectors [][]float32
		err := p.client.PostJSON(ctx, p.baseURL+"/embed", teiRequest{Inputs: batch, Truncate: true}, &vectors)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, ctxErr)
			}
			return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: tei returned %d embeddings for %d texts",
				ErrEmbeddingFailed, len(vectors), len(batch))
		}
		out = append(out, vectors...)
	}

	p.dimension.Store(int64(len(out[0])))
	return out, nil
}

func (p *TEIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
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
func (p *TEIProvider) Dimension() int {
	return int(p.dimension.Load())
}

func (p *TEIProvider) Model() string {
	return p.model
}

func (p *TEIProvider) Close() error {
	return nil
}
