package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "mdcatalog", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())

	// no-op spans are safe to use
	spanCtx, span := StartSpan(ctx, "metadata.get")
	RecordError(spanCtx, errors.New("ignored"))
	span.End()
	assert.Empty(t, TraceID(spanCtx))
}

func TestInitProfilingDisabled(t *testing.T) {
	stop, err := InitProfiling(ProfilingConfig{})
	require.NoError(t, err)
	assert.NoError(t, stop())
}

func TestParseProfileType(t *testing.T) {
	_, err := parseProfileType("mutex_duration")
	assert.NoError(t, err)

	_, err = parseProfileType("heap")
	assert.Error(t, err)
}

func TestStoreSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { SetTracerProvider(nil) })

	require.True(t, IsEnabled())

	ctx, span := StartStoreSpan(context.Background(), "metadata_draft", "update", RecordID(42))
	assert.NotEmpty(t, TraceID(ctx))
	EndSpan(span, errors.New("record 42 not found"))

	_, ok := StartStoreSpan(context.Background(), "metadata", "get", RecordID(1))
	EndSpan(ok, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	failed := spans[0]
	assert.Equal(t, "metadata_draft.update", failed.Name())
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Contains(t, failed.Attributes(), attribute.Int(AttrRecordID, 42))
	assert.Contains(t, failed.Attributes(), attribute.String(AttrStore, "metadata_draft"))

	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}
