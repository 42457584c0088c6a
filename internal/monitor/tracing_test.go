package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/joeycumines/arbor/internal/bt"
)

func TestTracer_RecordsTickSpans(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := NewTracer(provider, "sample")

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tracer.ObserveTick(bt.TickEvent{Seq: 1, Status: bt.Running, Started: started, Elapsed: 2 * time.Millisecond})
	tracer.ObserveTick(bt.TickEvent{Seq: 2, Status: bt.Failed, Started: started.Add(time.Second), Elapsed: time.Millisecond})

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	first := spans[0]
	require.Equal(t, "tick", first.Name())
	require.True(t, first.StartTime().Equal(started))
	require.True(t, first.EndTime().Equal(started.Add(2*time.Millisecond)))
	require.Contains(t, first.Attributes(), attribute.String("bt.tree", "sample"))
	require.Contains(t, first.Attributes(), attribute.Int64("bt.seq", 1))
	require.Contains(t, first.Attributes(), attribute.String("bt.status", "running"))
	require.Equal(t, codes.Unset, first.Status().Code)

	second := spans[1]
	require.Contains(t, second.Attributes(), attribute.String("bt.status", "failed"))
	require.Equal(t, codes.Error, second.Status().Code)
}

func TestTracer_AsTreeObserver(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	root := sampleTree(t)
	tree := bt.NewTree(0, root,
		bt.WithObserver(NewTracer(provider, "sample")),
		bt.WithLogger(discardLogger()))
	for range 3 {
		tree.Tick()
	}
	require.Len(t, recorder.Ended(), 3)
}

func TestDefaultTracingConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultTracingConfig("arbor")
	require.Equal(t, "arbor", cfg.ServiceName)
	require.Equal(t, 1.0, cfg.SampleRatio)
	require.NotEmpty(t, cfg.OTLPEndpoint)
}
