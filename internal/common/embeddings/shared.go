// internal/common/embeddings/shared.go
package embeddings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"job-recommender/internal/common/logger"
)

// Loader constructs the underlying provider on first use.
type Loader func(ctx context.Context) (Provider, error)

// Shared is a lazily loaded, reference-counted provider. The model loads on
// the first Acquire and is closed when the last Handle is released.
type Shared struct {
	mu       sync.Mutex
	load     Loader
	provider Provider
	refs     int
	log      logger.Logger
}

func NewShared(load Loader, log logger.Logger) *Shared {
	return &Shared{load: load, log: log}
}

// Acquire returns a handle on the shared provider, loading it if needed.
// Every handle must be closed exactly once.
func (s *Shared) Acquire(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.provider == nil {
		start := time.Now()
		p, err := s.load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading embedding model: %w", err)
		}
		s.provider = p
		s.log.Info("Embedding model loaded", map[string]interface{}{
			"model":      p.Model(),
			"dimension":  p.Dimension(),
			"durationMs": time.Since(start).Milliseconds(),
		})
	}

	s.refs++
	return &Handle{Provider: s.provider, shared: s}, nil
}

// Release closes h. It is equivalent to h.Close.
func (s *Shared) Release(h *Handle) error {
	return h.Close()
}

func (s *Shared) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return nil
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}

	p := s.provider
	s.provider = nil
	s.log.Info("Embedding model released", map[string]interface{}{"model": p.Model()})
	return p.Close()
}

// Refs reports the number of open handles.
func (s *Shared) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Handle is one reference on a Shared provider. Closing it releases the
// reference instead of closing the model.
type Handle struct {
	Provider
	shared *Shared
	once   sync.Once
}

func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		err = h.shared.release()
	})
	return err
}
