package perf

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type SpanSnapshot struct {
	Name         string                 `json:"name"`
	TraceID      string                 `json:"traceId"`
	SpanID       string                 `json:"spanId"`
	ParentSpanID string                 `json:"parentSpanId,omitempty"`
	StartTime    time.Time              `json:"startTime"`
	EndTime      time.Time              `json:"endTime"`
	DurationNS   int64                  `json:"durationNs"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	Events       []EventSnapshot        `json:"events,omitempty"`
}

type EventSnapshot struct {
	Name       string                 `json:"name"`
	Timestamp  time.Time              `json:"timestamp"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

func GetSpans() ([]SpanSnapshot, error) {
	spans, err := SnapshotSpans()
	if err != nil {
		return nil, err
	}
	if spans == nil {
		return nil, nil
	}

	out := make([]SpanSnapshot, 0, len(spans))
	for _, span := range spans {
		out = append(out, snapshotSpan(span))
	}
	return out, nil
}

func MustGetSpans() []SpanSnapshot {
	spans, err := GetSpans()
	if err != nil {
		return nil
	}
	return spans
}

func FindSpanByName(spans []SpanSnapshot, name string) (SpanSnapshot, bool) {
	for _, span := range spans {
		if span.Name == name {
			return span, true
		}
	}
	return SpanSnapshot{}, false
}

func snapshotSpan(span sdktrace.ReadOnlySpan) SpanSnapshot {
	sc := span.SpanContext()

	out := SpanSnapshot{
		Name:       span.Name(),
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		StartTime:  span.StartTime(),
		EndTime:    span.EndTime(),
		DurationNS: span.EndTime().Sub(span.StartTime()).Nanoseconds(),
		Attributes: attributesToMap(span.Attributes()),
	}
	if parent := span.Parent(); parent.IsValid() {
		out.ParentSpanID = parent.SpanID().String()
	}

	for _, event := range span.Events() {
		out.Events = append(out.Events, EventSnapshot{
			Name:       event.Name,
			Timestamp:  event.Time,
			Attributes: attributesToMap(event.Attributes),
		})
	}

	return out
}

func attributesToMap(attrs []attribute.KeyValue) map[string]interface{} {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}
