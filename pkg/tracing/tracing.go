// Package tracing sets up OpenTelemetry export for the panel. Export is off
// unless an OTLP endpoint is configured.
package tracing

import (
	"context"

	"github.com/huangang/lvepanel/internal/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/huangang/lvepanel"

// Provider owns the tracer provider, if any.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// Setup returns a Provider exporting over OTLP/HTTP, or a no-op Provider when
// cfg.Endpoint is empty.
func Setup(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	if cfg.Endpoint == "" {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(instrumentationName)}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "lvepanel"
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)

	return &Provider{
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
	}, nil
}

func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans leave the process.
func (p *Provider) Enabled() bool {
	return p != nil && p.provider != nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
