// Package observability provides OpenTelemetry tracing and Prometheus style
// metrics for conversion runs.
package observability

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every span.
const TracerName = "github.com/honghai9112k/tool-java2ts"

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// OTLPEndpoint is the OTLP gRPC endpoint (e.g. "localhost:4317").
	// If empty, tracing is disabled.
	OTLPEndpoint string

	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64
}

// DefaultTracingConfig returns a default tracing configuration.
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:    "j2ts",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		SampleRate:     1.0,
	}
}

// TracerProvider wraps the OpenTelemetry tracer provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing initializes OpenTelemetry tracing.
// Returns a no-op tracer if OTLPEndpoint is empty.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultTracingConfig()
	}

	if cfg.OTLPEndpoint == "" {
		return &TracerProvider{tracer: otel.Tracer(TracerName)}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create OTLP exporter")
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create resource")
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown flushes and stops the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the underlying tracer.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// Span kinds recorded under the j2ts.span.kind attribute.
const (
	SpanKindRun       = "run"
	SpanKindFile      = "file"
	SpanKindImportFix = "import_fix"
	SpanKindGraph     = "graph"
)

// StartRunSpan starts the span covering one batch conversion run.
func StartRunSpan(ctx context.Context, mode string, fileCount int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "batch.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("j2ts.span.kind", SpanKindRun),
			attribute.String("batch.mode", mode),
			attribute.Int("batch.file_count", fileCount),
		),
	)
}

// RecordRunResult records the totals of a batch run.
func RecordRunResult(span trace.Span, succeeded, failed int, elapsed time.Duration) {
	span.SetAttributes(
		attribute.Int("batch.success_count", succeeded),
		attribute.Int("batch.failure_count", failed),
		attribute.Int64("batch.duration_ms", elapsed.Milliseconds()),
	)
}

// StartFileSpan starts the span for converting one input file.
func StartFileSpan(ctx context.Context, relativePath string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "batch.file",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("j2ts.span.kind", SpanKindFile),
			attribute.String("file.path", relativePath),
		),
	)
}

// RecordFileResult records the outcome of one file conversion. A failed file
// that is not an error (too small, no content) still marks the span.
func RecordFileResult(span trace.Span, outcome string, success bool, reason string) {
	span.SetAttributes(
		attribute.String("file.outcome", outcome),
		attribute.Bool("file.success", success),
	)
	if !success && reason != "" {
		span.SetAttributes(attribute.String("file.reason", reason))
	}
}

// StartImportFixSpan starts the span for the update-imports pass.
func StartImportFixSpan(ctx context.Context, root string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "importfix.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("j2ts.span.kind", SpanKindImportFix),
			attribute.String("importfix.root", root),
		),
	)
}

// RecordImportFixResult records how many outputs were rewritten.
func RecordImportFixResult(span trace.Span, total, updated int) {
	span.SetAttributes(
		attribute.Int("importfix.total_files", total),
		attribute.Int("importfix.updated_files", updated),
	)
}

// StartGraphSpan starts a span for a graph or vector store operation.
func StartGraphSpan(ctx context.Context, operation string, size int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "graph."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("j2ts.span.kind", SpanKindGraph),
			attribute.Int("graph.size", size),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
