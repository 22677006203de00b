package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Span interface {
	SetAttributes(value ...attribute.KeyValue)
	SetAttribute(value attribute.KeyValue)
	End(options ...trace.SpanEndOption)
	NoticeError(err error)
	AddEvent(name string, options ...trace.EventOption)
	IsRecording() bool
	SpanContext() trace.SpanContext
}

type traceSpan struct {
	span trace.Span
}

func NewSpan(span trace.Span) Span {
	return &traceSpan{
		span,
	}
}

func (t *traceSpan) SetAttributes(values ...attribute.KeyValue) {
	for _, value := range values {
		t.span.SetAttributes(value)
	}
}

func (t *traceSpan) SetAttribute(value attribute.KeyValue) {
	t.span.SetAttributes(value)
}

func (t *traceSpan) End(options ...trace.SpanEndOption) {
	t.span.End(options...)
}

// NoticeError records the error and marks the span failed.
func (t *traceSpan) NoticeError(err error) {
	t.span.RecordError(err)
	t.span.SetStatus(codes.Error, err.Error())
}

func (t *traceSpan) AddEvent(name string, options ...trace.EventOption) {
	t.span.AddEvent(name, options...)
}

func (t *traceSpan) IsRecording() bool {
	return t.span.IsRecording()
}

func (t *traceSpan) SpanContext() trace.SpanContext {
	return t.span.SpanContext()
}
