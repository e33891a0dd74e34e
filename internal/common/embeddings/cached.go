// internal/common/embeddings/cached.go
package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/metrics"
)

// Cached stores vectors in Redis keyed by model and text hash. Redis errors
// are logged and bypass the cache.
type Cached struct {
	next   Provider
	client redis.Cmdable
	ttl    time.Duration
	log    logger.Logger
}

func NewCached(next Provider, client redis.Cmdable, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{next: next, client: client, ttl: ttl, log: log}
}

func (c *Cached) Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%s:%s", c.next.Model(), hex.EncodeToString(sum[:]))
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch serves hits from one MGET and embeds all misses in one call to
// the wrapped provider.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.Key(t)
	}

	cachedVals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.EmbeddingCacheRequests.WithLabelValues(metrics.CacheError).Inc()
		c.log.Warn("Embedding cache read failed", map[string]interface{}{"error": err.Error()})
		return c.next.EmbedBatch(ctx, texts)
	}

	out := make([][]float32, len(texts))
	var missIdx []int
	for i, v := range cachedVals {
		if s, ok := v.(string); ok {
			if vec, ok := decodeVector(s); ok {
				out[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
	}

	hits := len(texts) - len(missIdx)
	metrics.EmbeddingCacheRequests.WithLabelValues(metrics.CacheHit).Add(float64(hits))
	metrics.EmbeddingCacheRequests.WithLabelValues(metrics.CacheMiss).Add(float64(len(missIdx)))

	if len(missIdx) == 0 {
		return out, nil
	}

	missTexts := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
	}
	vectors, err := c.next.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbeddingFailed, len(vectors), len(missTexts))
	}

	pipe := c.client.Pipeline()
	for j, i := range missIdx {
		out[i] = vectors[j]
		pipe.Set(ctx, keys[i], encodeVector(vectors[j]), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("Embedding cache write failed", map[string]interface{}{
			"error": err.Error(),
			"count": len(missIdx),
		})
	}

	return out, nil
}

func (c *Cached) Dimension() int { return c.next.Dimension() }

func (c *Cached) Model() string { return c.next.Model() }

// Close closes the wrapped provider. The Redis client is owned by the caller.
func (c *Cached) Close() error { return c.next.Close() }

// Vectors are stored as little-endian float32s.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(s string) ([]float32, bool) {
	if len(s) == 0 || len(s)%4 != 0 {
		return nil, false
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, true
}
