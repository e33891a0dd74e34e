// Package embeddings turns job and seeker text into dense vectors. Providers
// are a local ONNX model (fastembed), Gemini (genai) or a text-embeddings-
// inference server (tei). Shared and Cached wrap any provider.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"job-recommender/internal/common/config"
	"job-recommender/internal/common/logger"
)

var (
	ErrEmptyInput      = errors.New("empty or nil input texts")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Provider is satisfied by every embedding backend. It also satisfies
// ranking.Embedder.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
	Close() error
}

// NewProvider builds the provider selected by cfg.Provider, instrumented
// with otel metrics.
func NewProvider(ctx context.Context, cfg config.EmbeddingConfig, log logger.Logger) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.Provider {
	case config.ProviderFastEmbed, "":
		p, err = NewFastEmbedProvider(FastEmbedConfig{
			Model:     cfg.Model,
			CacheDir:  cfg.CacheDir,
			MaxLength: cfg.MaxLength,
			BatchSize: cfg.BatchSize,
		})
	case config.ProviderGenAI:
		p, err = NewGenAIProvider(ctx, GenAIConfig{
			APIKey:    cfg.GenAI.APIKey,
			Model:     cfg.GenAI.Model,
			BatchSize: cfg.BatchSize,
		})
	case config.ProviderTEI:
		p, err = NewTEIProvider(TEIConfig{
			BaseURL:   cfg.TEI.BaseURL,
			Model:     cfg.Model,
			Timeout:   config.GetDuration(cfg.TEI.Timeout),
			BatchSize: cfg.BatchSize,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithMetrics(p, NewMetrics(log)), nil
}

// chunk splits texts into consecutive batches of at most size.
func chunk(texts []string, size int) [][]string {
	if size <= 0 {
		size = len(texts)
	}
	var out [][]string
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, texts[start:end])
	}
	return out
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
