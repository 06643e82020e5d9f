package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestProviderNoExporter(t *testing.T) {
	cfg := DefaultConfig("comment-service")
	cfg.ExporterType = ExporterNone
	require.NoError(t, InitGlobal(cfg))
	t.Cleanup(func() { _ = ShutdownGlobal(context.Background()) })

	ctx, span := StartSpan(context.Background(), "test")
	assert.True(t, span.SpanContext().IsValid())
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	assert.NotEmpty(t, carrier.Get("traceparent"))
}

func TestUnsupportedExporter(t *testing.T) {
	cfg := DefaultConfig("x")
	cfg.ExporterType = "jaeger"
	_, err := NewProvider(cfg)
	assert.Error(t, err)
}
