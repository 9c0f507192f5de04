package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for obsrv stores.
const defaultTracerName = "obsrv"

// Operation kinds passed to filters and attribute extractors.
const (
	OpWrite    = "write"
	OpComputed = "computed"
	OpAction   = "action"
)

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "obsrv").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// TraceWrites creates spans for field writes. Writes are frequent, so
	// this is disabled by default.
	TraceWrites bool

	// Filter determines which operations to trace. If nil, all are traced.
	Filter func(op, name string) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ctx context.Context, op, name string) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithTraceWrites enables spans for field writes.
func WithTraceWrites(enabled bool) OTelOption {
	return func(c *OTelConfig) {
		c.TraceWrites = enabled
	}
}

// WithFilter sets a filter function for operations.
func WithFilter(filter func(op, name string) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx context.Context, op, name string) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing is an obsrv.Observer that wraps operations in spans.
type Tracing struct {
	config OTelConfig
}

// OpenTelemetry creates a tracing observer. Action calls and computed reads
// are traced by default; writes only with WithTraceWrites.
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure it in main() before constructing stores:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) *Tracing {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}

	return &Tracing{config: config}
}

// ObserveWrite implements obsrv.Observer.
func (t *Tracing) ObserveWrite(ctx context.Context, path string, next func() error) error {
	if !t.config.TraceWrites || !t.enabled(OpWrite, path) {
		return next()
	}

	_, span := t.start(ctx, OpWrite, path, attribute.String("obsrv.path", path))
	defer span.End()

	err := next()
	finish(span, err)
	return err
}

// ObserveComputed implements obsrv.Observer.
func (t *Tracing) ObserveComputed(ctx context.Context, name string, next func() (any, error)) (any, error) {
	if !t.enabled(OpComputed, name) {
		return next()
	}

	_, span := t.start(ctx, OpComputed, name, attribute.String("obsrv.computed", name))
	defer span.End()

	v, err := next()
	finish(span, err)
	return v, err
}

// ObserveAction implements obsrv.Observer.
func (t *Tracing) ObserveAction(ctx context.Context, name string, next func() (any, error)) (any, error) {
	if !t.enabled(OpAction, name) {
		return next()
	}

	_, span := t.start(ctx, OpAction, name, attribute.String("obsrv.action", name))
	defer span.End()

	v, err := next()
	finish(span, err)
	return v, err
}

func (t *Tracing) enabled(op, name string) bool {
	return t.config.Filter == nil || t.config.Filter(op, name)
}

func (t *Tracing) start(ctx context.Context, op, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs = append(attrs, attribute.String("obsrv.op", op))
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(ctx, op, name)...)
	}

	return t.config.tracer.Start(ctx,
		fmt.Sprintf("obsrv.%s %s", op, name),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
