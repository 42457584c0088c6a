package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/joeycumines/arbor/internal/bt"
)

// TracerName is the instrumentation scope of tick spans.
const TracerName = "github.com/joeycumines/arbor/internal/monitor"

// TracingConfig holds configuration for tracing setup.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLPEndpoint is host:port of an OTLP HTTP collector, e.g.
	// "127.0.0.1:4318"; the exporter adds the path.
	OTLPEndpoint string
	SampleRatio  float64
}

// DefaultTracingConfig returns a configuration for a local collector that
// samples every trace.
func DefaultTracingConfig(serviceName string) TracingConfig {
	return TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		OTLPEndpoint:   "127.0.0.1:4318",
		SampleRatio:    1.0,
	}
}

// SetupTracing installs a global OpenTelemetry tracer provider exporting
// over OTLP HTTP. The returned function flushes and shuts it down.
func SetupTracing(ctx context.Context, config TracingConfig, logger *slog.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("[Monitor] setting up tracing",
		"service", config.ServiceName,
		"endpoint", config.OTLPEndpoint,
		"environment", config.Environment)

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(config.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("monitor: create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("monitor: create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.SampleRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// Tracer is a [bt.Observer] recording a span per tick, named "tick", with
// the tick's sequence number and status as attributes. Failed ticks set the
// span status to error.
type Tracer struct {
	tracer trace.Tracer
	tree   string
}

// NewTracer returns a tracer using provider, or the global provider if
// provider is nil.
func NewTracer(provider trace.TracerProvider, tree string) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: provider.Tracer(TracerName), tree: tree}
}

// ObserveTick implements [bt.Observer].
func (t *Tracer) ObserveTick(event bt.TickEvent) {
	_, span := t.tracer.Start(context.Background(), "tick",
		trace.WithTimestamp(event.Started),
		trace.WithAttributes(
			attribute.String("bt.tree", t.tree),
			attribute.Int64("bt.seq", int64(event.Seq)),
			attribute.String("bt.status", event.Status.String()),
		),
	)
	if event.Status == bt.Failed {
		span.SetStatus(codes.Error, "tree failed")
	}
	span.End(trace.WithTimestamp(event.Started.Add(event.Elapsed)))
}
