// Package observability wraps OpenTelemetry tracing and metrics and the
// Server-Timing header for calls the console makes to the catalog API.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// InstrumentationName identifies this module's tracer and meter.
	InstrumentationName = "catalog-admin/catalogclient"

	AttrOperation  = "catalog.operation"
	AttrProductID  = "catalog.product_id"
	AttrStatusCode = "http.response.status_code"
)

// Instruments bundles the tracer and metric instruments used around API calls.
type Instruments struct {
	tracer       trace.Tracer
	callCount    metric.Int64Counter
	errorCount   metric.Int64Counter
	callDuration metric.Float64Histogram
}

// New creates instruments from the given providers. Nil providers fall back to
// the global ones, which are no-ops until an SDK is installed.
func New(tp trace.TracerProvider, mp metric.MeterProvider) *Instruments {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(InstrumentationName)
	in := &Instruments{tracer: tp.Tracer(InstrumentationName)}

	var err error
	in.callCount, err = meter.Int64Counter(
		"catalog.api.calls",
		metric.WithDescription("Number of calls made to the catalog API"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		in.callCount, _ = meter.Int64Counter("catalog.api.calls")
	}

	in.errorCount, err = meter.Int64Counter(
		"catalog.api.errors",
		metric.WithDescription("Number of failed calls to the catalog API"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		in.errorCount, _ = meter.Int64Counter("catalog.api.errors")
	}

	in.callDuration, err = meter.Float64Histogram(
		"catalog.api.duration",
		metric.WithDescription("Duration of catalog API calls in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		in.callDuration, _ = meter.Float64Histogram("catalog.api.duration")
	}
	return in
}

// Call tracks one API call.
type Call struct {
	in     *Instruments
	span   trace.Span
	timing *ServerTimingMetric
	op     string
	start  time.Time
}

// Start opens a span and a Server-Timing metric for operation op.
func (in *Instruments) Start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, *Call) {
	attrs = append(attrs, attribute.String(AttrOperation, op))
	ctx, span := in.tracer.Start(ctx, "catalog."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	return ctx, &Call{
		in:     in,
		span:   span,
		timing: StartServerTimingWithDesc(ctx, "catalog-api", op),
		op:     op,
		start:  time.Now(),
	}
}

// SetStatusCode records the HTTP status of the response.
func (c *Call) SetStatusCode(code int) {
	c.span.SetAttributes(attribute.Int(AttrStatusCode, code))
}

// End closes the call, recording err when non-nil.
func (c *Call) End(ctx context.Context, err error) {
	opAttr := metric.WithAttributes(attribute.String(AttrOperation, c.op))
	c.in.callCount.Add(ctx, 1, opAttr)
	c.in.callDuration.Record(ctx, float64(time.Since(c.start).Microseconds())/1000, opAttr)
	if err != nil {
		c.in.errorCount.Add(ctx, 1, opAttr)
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	}
	c.timing.Stop()
	c.span.End()
}
