// internal/common/embeddings/embeddings_test.go
package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-recommender/internal/common/config"
	"job-recommender/internal/common/logger"
)

// ==========================
// Test helpers
// ==========================

// countingProvider returns [len(text), 1, 0] for every text and records
// every batch it receives.
type countingProvider struct {
	mu      sync.Mutex
	batches [][]string
	closed  int
	err     error
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (p *countingProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, append([]string(nil), texts...))
	if p.err != nil {
		return nil, p.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1, 0}
	}
	return out, nil
}

func (p *countingProvider) Dimension() int { return 3 }
func (p *countingProvider) Model() string  { return "test-model" }
func (p *countingProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *countingProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// ==========================
// Shared
// ==========================

func TestShared_LoadsOnceAndClosesOnLastRelease(t *testing.T) {
	inner := &countingProvider{}
	loads := 0
	shared := NewShared(func(context.Context) (Provider, error) {
		loads++
		return inner, nil
	}, logger.NewTestLogger(t))

	ctx := context.Background()
	h1, err := shared.Acquire(ctx)
	require.NoError(t, err)
	h2, err := shared.Acquire(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, 2, shared.Refs())

	_, err = h1.Embed(ctx, "go")
	require.NoError(t, err)

	require.NoError(t, h1.Close())
	require.NoError(t, h1.Close()) // second close is a no-op
	assert.Equal(t, 1, shared.Refs())
	assert.Equal(t, 0, inner.closed)

	require.NoError(t, shared.Release(h2))
	assert.Equal(t, 0, shared.Refs())
	assert.Equal(t, 1, inner.closed)

	// Reacquiring loads the model again.
	h3, err := shared.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
	require.NoError(t, h3.Close())
}

func TestShared_LoadError(t *testing.T) {
	shared := NewShared(func(context.Context) (Provider, error) {
		return nil, ErrInvalidConfig
	}, logger.NewNoOpLogger())

	_, err := shared.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, 0, shared.Refs())
}

func TestShared_ConcurrentAcquire(t *testing.T) {
	inner := &countingProvider{}
	loads := 0
	shared := NewShared(func(context.Context) (Provider, error) {
		loads++
		return inner, nil
	}, logger.NewNoOpLogger())

	var wg sync.WaitGroup
	handles := make([]*Handle, 20)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := shared.Acquire(context.Background())
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, loads)
	assert.Equal(t, 20, shared.Refs())
	for _, h := range handles {
		require.NoError(t, h.Close())
	}
	assert.Equal(t, 1, inner.closed)
}

// ==========================
// Cached
// ==========================

func TestCached_MissThenHit(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingProvider{}
	cached := NewCached(inner, client, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := cached.EmbedBatch(ctx, []string{"python", "sql"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{6, 1, 0}, {3, 1, 0}}, first)
	assert.Equal(t, 1, inner.calls())
	assert.True(t, mr.Exists(cached.Key("python")))
	assert.Equal(t, time.Minute, mr.TTL(cached.Key("python")))

	second, err := cached.EmbedBatch(ctx, []string{"python", "sql"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls(), "all hits must not call the provider")
}

func TestCached_PartialHitEmbedsOnlyMisses(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingProvider{}
	cached := NewCached(inner, client, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	_, err := cached.Embed(ctx, "python")
	require.NoError(t, err)

	got, err := cached.EmbedBatch(ctx, []string{"golang", "python", "rust"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{6, 1, 0}, {6, 1, 0}, {4, 1, 0}}, got)

	require.Equal(t, 2, inner.calls())
	assert.Equal(t, []string{"golang", "rust"}, inner.batches[1])
}

func TestCached_RedisDownFallsThrough(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingProvider{}
	cached := NewCached(inner, client, time.Minute, logger.NewNoOpLogger())
	mr.Close()

	got, err := cached.EmbedBatch(context.Background(), []string{"python"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{6, 1, 0}}, got)
	assert.Equal(t, 1, inner.calls())
}

func TestCached_ProviderError(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingProvider{err: ErrEmbeddingFailed}
	cached := NewCached(inner, client, time.Minute, logger.NewNoOpLogger())

	_, err := cached.EmbedBatch(context.Background(), []string{"python"})
	assert.True(t, errors.Is(err, ErrEmbeddingFailed))
}

func TestCached_KeyIncludesModel(t *testing.T) {
	cached := NewCached(&countingProvider{}, nil, time.Minute, logger.NewNoOpLogger())
	key := cached.Key("python")
	assert.Regexp(t, `^emb:test-model:[0-9a-f]{64}$`, key)
	assert.NotEqual(t, key, cached.Key("sql"))
}

func TestVectorCodec(t *testing.T) {
	v := []float32{0.25, -1.5, 3}
	got, ok := decodeVector(string(encodeVector(v)))
	require.True(t, ok)
	assert.Equal(t, v, got)

	_, ok = decodeVector("abc")
	assert.False(t, ok)
}

// ==========================
// TEI
// ==========================

func TestTEIProvider_EmbedBatch(t *testing.T) {
	var requests []teiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		var req teiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		out := make([][]float32, len(req.Inputs))
		for i := range req.Inputs {
			out[i] = []float32{float32(i), 1}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	p, err := NewTEIProvider(TEIConfig{BaseURL: server.URL + "/", Model: "minilm", BatchSize: 2})
	require.NoError(t, err)

	got, err := p.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 2, p.Dimension())

	require.Len(t, requests, 2)
	assert.Equal(t, []string{"a", "b"}, requests[0].Inputs)
	assert.Equal(t, []string{"c"}, requests[1].Inputs)
	assert.True(t, requests[0].Truncate)
}

func TestTEIProvider_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p, err := NewTEIProvider(TEIConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "python")
	assert.True(t, errors.Is(err, ErrEmbeddingFailed))

	_, err = p.EmbedBatch(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	_, err = NewTEIProvider(TEIConfig{})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestTEIProvider_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and cancels
		// r.Context() when the client gives up.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	p, err := NewTEIProvider(TEIConfig{BaseURL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Embed(ctx, "python")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

// ==========================
// Factory and helpers
// ==========================

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), config.EmbeddingConfig{Provider: "word2vec"}, logger.NewNoOpLogger())
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg := config.EmbeddingConfig{Provider: config.ProviderTEI, Model: "minilm"}
	cfg.TEI.BaseURL = "http://localhost:1"
	p, err := NewProvider(context.Background(), cfg, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, "minilm", p.Model())
	require.NoError(t, p.Close())
}

func TestWithMetrics_PassesThrough(t *testing.T) {
	inner := &countingProvider{}
	p := WithMetrics(inner, NewMetrics(logger.NewNoOpLogger()))

	v, err := p.Embed(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 1, 0}, v)

	inner.err = ErrEmbeddingFailed
	_, err = p.EmbedBatch(context.Background(), []string{"go"})
	assert.True(t, errors.Is(err, ErrEmbeddingFailed))
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunk([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b", "c"}}, chunk([]string{"a", "b", "c"}, 0))
	assert.Nil(t, chunk(nil, 2))
}
