package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Recorder turns named operations into a span each, counted in
// <prefix>.operations, timed in <prefix>.operation.duration and, on failure,
// counted in <prefix>.errors.
//
// Instruments are taken from the global providers when the Recorder is
// built, so build it after Init.
type Recorder struct {
	tracer trace.Tracer
	prefix string
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// NewRecorder builds a Recorder for the given instrumentation scope.
func NewRecorder(scope, prefix string) *Recorder {
	m := Meter(scope)
	ops, _ := m.Int64Counter(prefix+".operations",
		metric.WithDescription("Total operations executed, by outcome"),
	)
	dur, _ := m.Float64Histogram(prefix+".operation.duration",
		metric.WithDescription("Operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter(prefix+".errors",
		metric.WithDescription("Total operation errors"),
	)
	return &Recorder{
		tracer: Tracer(scope),
		prefix: prefix,
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// Op is one operation in flight.
type Op struct {
	r     *Recorder
	ctx   context.Context
	span  trace.Span
	start time.Time
	attrs []attribute.KeyValue
}

// Start opens a span named <prefix>.<name>.
func (r *Recorder) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Op) {
	all := append([]attribute.KeyValue{attribute.String("console.operation", name)}, attrs...)
	ctx, span := r.tracer.Start(ctx, r.prefix+"."+name, trace.WithAttributes(all...))
	return ctx, &Op{r: r, ctx: ctx, span: span, start: time.Now(), attrs: all}
}

// End closes the span. outcome attributes (such as the resulting status) are
// added to the span and to the operation count.
func (o *Op) End(err error, outcome ...attribute.KeyValue) {
	all := append(append([]attribute.KeyValue(nil), o.attrs...), outcome...)
	o.span.SetAttributes(outcome...)
	o.r.ops.Add(o.ctx, 1, metric.WithAttributes(all...))
	o.r.dur.Record(o.ctx, float64(time.Since(o.start).Milliseconds()), metric.WithAttributes(o.attrs...))
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		o.r.errs.Add(o.ctx, 1, metric.WithAttributes(o.attrs...))
	}
	o.span.End()
}
