// Package observability wires OpenTelemetry tracing for the router and
// agents. Tracing is optional; with no exporter configured every span is
// a no-op.
package observability

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName identifies this service in traces.
const DefaultServiceName = "tellergo"

var (
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
)

// Config selects the trace exporter.
type Config struct {
	// ServiceName defaults to DefaultServiceName.
	ServiceName string

	// Enabled turns span export on. Disabled tracing still hands out
	// working no-op spans.
	Enabled bool

	// ExporterType is "otlp", "stdout" or "none".
	ExporterType string

	// OTLPEndpoint and OTLPHeaders configure the otlp exporter.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
}

// InitFromEnv initializes tracing from the standard OpenTelemetry
// environment variables (OTEL_SERVICE_NAME, OTEL_TRACES_EXPORTER,
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_HEADERS).
func InitFromEnv() error {
	return Init(Config{
		ServiceName:  envOr("OTEL_SERVICE_NAME", DefaultServiceName),
		Enabled:      envOr("OTEL_TRACES_ENABLED", "true") == "true",
		ExporterType: envOr("OTEL_TRACES_EXPORTER", "stdout"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPHeaders:  parseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
	})
}

// Init sets up the global tracer provider.
func Init(cfg Config) error {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	if !cfg.Enabled || cfg.ExporterType == "none" {
		tracer = otel.GetTracerProvider().Tracer(cfg.ServiceName)
		return nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return fmt.Errorf("trace resource: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = tracerProvider.Tracer(cfg.ServiceName)
	return nil
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case "otlp":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if len(cfg.OTLPHeaders) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.OTLPHeaders))
		}
		log.Printf("tracing to otlp endpoint %s", cfg.OTLPEndpoint)
		return otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown trace exporter: %s", cfg.ExporterType)
	}
}

// Shutdown flushes and stops the tracer provider. A context without a
// deadline gets a 5s one.
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return tracerProvider.Shutdown(ctx)
}

// StartSpan opens a child span of ctx carrying the given attributes.
func StartSpan(ctx context.Context, name string, data map[string]any) (context.Context, *Span) {
	tr := tracer
	if tr == nil {
		tr = otel.GetTracerProvider().Tracer(DefaultServiceName)
	}

	ctx, span := tr.Start(ctx, name)
	for k, v := range data {
		span.SetAttributes(toAttribute(k, v))
	}
	return ctx, &Span{span: span, name: name}
}

// Span wraps an otel span with the small surface the router needs.
type Span struct {
	span  trace.Span
	name  string
	ended bool
}

// End finishes the span. Safe to call more than once.
func (s *Span) End() {
	if !s.ended && s.span != nil {
		s.span.End()
		s.ended = true
	}
}

// Name returns the span name.
func (s *Span) Name() string { return s.name }

// SetAttribute records one attribute.
func (s *Span) SetAttribute(key string, value any) {
	if s.span != nil {
		s.span.SetAttributes(toAttribute(key, value))
	}
}

// SetError records err on the span.
func (s *Span) SetError(err error) {
	if s.span != nil && err != nil {
		s.span.RecordError(err)
	}
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		if kv := strings.SplitN(pair, "=", 2); len(kv) == 2 {
			headers[kv[0]] = kv[1]
		}
	}
	return headers
}
