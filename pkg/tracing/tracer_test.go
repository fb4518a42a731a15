package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSamplerDescription(t *testing.T) {
	assert.Contains(t, Sampler(Config{SampleRate: 0.25}).Description(), "TraceIDRatioBased{0.25}")
	assert.Contains(t, Sampler(Config{Environment: "production"}).Description(), "TraceIDRatioBased{0.1}")
	assert.Contains(t, Sampler(Config{Environment: "development"}).Description(), "AlwaysOnSampler")
}

func TestRecordErrorAndTraceID(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "synthesize")
	assert.NotEmpty(t, TraceID(ctx))

	RecordError(ctx, errors.New("provider unavailable"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "provider unavailable", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)

	assert.Empty(t, TraceID(context.Background()))
}
