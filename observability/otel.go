package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type otelTracer struct{ t trace.Tracer }

// NewOTelTracer adapts an OpenTelemetry tracer.
func NewOTelTracer(t trace.Tracer) Tracer {
	if t == nil {
		return NopTracer()
	}
	return otelTracer{t: t}
}

func (o otelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := o.t.Start(ctx, name)
	return ctx, otelSpan{s: span}
}

type otelSpan struct{ s trace.Span }

func (o otelSpan) SetTag(key string, value interface{}) { o.s.SetAttributes(otelAttribute(key, value)) }
func (o otelSpan) AddEvent(name string)                 { o.s.AddEvent(name) }
func (o otelSpan) Finish()                              { o.s.End() }

func (o otelSpan) SetError(err error) {
	if err == nil {
		return
	}
	o.s.RecordError(err)
	o.s.SetStatus(codes.Error, err.Error())
}

func otelAttribute(key string, value interface{}) attribute.KeyValue {
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
		return attribute.String(key, fmt.Sprint(v))
	}
}

// TraceFields returns trace_id and span_id fields for the span in ctx, so
// log lines can be joined with traces.
func TraceFields(ctx context.Context) []Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []Field{
		String("trace_id", sc.TraceID().String()),
		String("span_id", sc.SpanID().String()),
	}
}
