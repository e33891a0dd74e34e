// internal/common/embeddings/metrics.go
package embeddings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"job-recommender/internal/common/logger"
)

const instrumentationName = "job-recommender/internal/common/embeddings"

type Metrics struct {
	meter     metric.Meter
	log       logger.Logger
	duration  metric.Float64Histogram
	batchSize metric.Int64Histogram
	errors    metric.Int64Counter
}

// NewMetrics creates the embedding instruments on the global MeterProvider.
func NewMetrics(log logger.Logger) *Metrics {
	m := &Metrics{
		meter: otel.Meter(instrumentationName),
		log:   log,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"embedding.generation_duration_seconds",
		metric.WithDescription("Duration of embedding generation by model and operation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		m.log.Warn("failed to create duration histogram", map[string]interface{}{"error": err.Error()})
	}

	m.batchSize, err = m.meter.Int64Histogram(
		"embedding.batch_size",
		metric.WithDescription("Number of texts per embedding call"),
		metric.WithUnit("{text}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		m.log.Warn("failed to create batch size histogram", map[string]interface{}{"error": err.Error()})
	}

	m.errors, err = m.meter.Int64Counter(
		"embedding.errors_total",
		metric.WithDescription("Embedding generation errors by model and operation"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.log.Warn("failed to create errors counter", map[string]interface{}{"error": err.Error()})
	}
}

func (m *Metrics) RecordGeneration(ctx context.Context, model, operation string, duration time.Duration, batchSize int, err error) {
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("operation", operation),
	)

	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), attrs)
	}
	if batchSize > 0 && m.batchSize != nil {
		m.batchSize.Record(ctx, int64(batchSize), attrs)
	}
	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

type instrumented struct {
	Provider
	metrics *Metrics
}

// WithMetrics records duration, batch size and errors for every call to p.
func WithMetrics(p Provider, m *Metrics) Provider {
	return &instrumented{Provider: p, metrics: m}
}

func (i *instrumented) Embed(ctx context.Context, text string) (vec []float32, err error) {
	defer func(start time.Time) {
		i.metrics.RecordGeneration(ctx, i.Model(), "embed", time.Since(start), 1, err)
	}(time.Now())
	return i.Provider.Embed(ctx, text)
}

func (i *instrumented) EmbedBatch(ctx context.Context, texts []string) (vecs [][]float32, err error) {
	defer func(start time.Time) {
		i.metrics.RecordGeneration(ctx, i.Model(), "embed_batch", time.Since(start), len(texts), err)
	}(time.Now())
	return i.Provider.EmbedBatch(ctx, texts)
}
