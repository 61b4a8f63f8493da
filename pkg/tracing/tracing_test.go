package tracing

import (
	"context"
	"testing"

	"github.com/huangang/lvepanel/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	p, err := Setup(context.Background(), config.TracingConfig{})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	require.NotNil(t, p.Tracer())
	_, span := p.Tracer().Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	p, err := Setup(context.Background(), config.TracingConfig{Endpoint: "127.0.0.1:4318", Insecure: true})
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "select system_users")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Shutdown(ctx)
}

func TestProvider_NilSafe(t *testing.T) {
	var p *Provider
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}
