// internal/common/observability/tracing.go
package observability

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"job-recommender/internal/common/config"
)

// EnableTracing installs a global TracerProvider that batches spans to the
// Jaeger collector. With tracing disabled the otel no-op provider stays in
// place and spans cost nothing.
func (o *Observability) EnableTracing(cfg config.TracingConfig, app config.AppConfig) error {
	if !cfg.Enabled {
		return nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
	if err != nil {
		return fmt.Errorf("creating jaeger exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", app.Name),
			attribute.String("service.version", app.Version),
			attribute.String("deployment.environment", app.Environment),
		)),
		sdktrace.WithSampler(newSampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(tp)
	o.tracerProvider = tp

	o.log.Info("Tracing enabled", map[string]interface{}{
		"endpoint":    cfg.JaegerEndpoint,
		"sampleRatio": cfg.SampleRatio,
	})
	return nil
}

func newSampler(ratio float64) sdktrace.Sampler {
	var sampler sdktrace.Sampler
	switch {
	case ratio >= 1:
		sampler = sdktrace.AlwaysSample()
	case ratio <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(sampler)
}
