package observability

import (
	"context"
	"fmt"

	"sublet/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the process tracer. InitTracing replaces it.
var Tracer trace.Tracer = otel.Tracer("sublet-api")

// TracingConfig holds configuration for initializing the tracer.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // "stdout" or "otlp"
	OTLPEndpoint   string
	// SamplerRatio is the share of root traces kept; zero keeps all.
	SamplerRatio float64
}

// InitTracing installs the global tracer provider and returns its shutdown func.
// When tracing is disabled spans still carry ids but nothing is exported.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Tracer = tp.Tracer(cfg.ServiceName)

	return tp.Shutdown, nil
}

func newExporter(cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp":
		exp, err := otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}
		return exp, nil
	case "stdout", "":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdout exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.Exporter)
	}
}

func newSampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Spans starts the spans of the store, snapshot persistence and Redis.
type Spans struct {
	tracer trace.Tracer
}

// NewSpans returns Spans backed by tracer.
func NewSpans(tracer trace.Tracer) *Spans {
	return &Spans{tracer: tracer}
}

// DefaultSpans returns Spans that follow the process Tracer, including a
// later InitTracing.
func DefaultSpans() *Spans {
	return &Spans{}
}

func (s *Spans) start(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = Tracer
	}
	return tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// Mutation starts the span of a store mutation, named "<collection>.<operation>".
func (s *Spans) Mutation(ctx context.Context, collection, operation string) (context.Context, trace.Span) {
	return s.start(ctx, collection+"."+operation, trace.SpanKindInternal,
		attribute.String("sublet.collection", collection),
		attribute.String("sublet.operation", operation),
	)
}

// Snapshot starts the span of a snapshot save or load against dialect.
func (s *Spans) Snapshot(ctx context.Context, operation, dialect string) (context.Context, trace.Span) {
	return s.start(ctx, "snapshot."+operation, trace.SpanKindClient,
		attribute.String("db.system", dialect),
		attribute.String("db.operation", operation),
	)
}

// Redis starts the span of a Redis round trip.
func (s *Spans) Redis(ctx context.Context, operation string) (context.Context, trace.Span) {
	return s.start(ctx, "redis."+operation, trace.SpanKindClient,
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", operation),
	)
}

// Finish ends span. A failing err is recorded with its domain error code;
// rejected requests are not span errors, internal failures are.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		code := models.ErrorCode(err)
		if code != "" {
			span.SetAttributes(attribute.String("sublet.error_code", code))
		}
		if code == "" || code == models.CodeInternal {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

// TraceIDFromContext returns the active trace id in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
