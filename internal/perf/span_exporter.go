package perf

import (
	"context"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanExporter keeps finished spans in memory until they are exported to disk.
type spanExporter struct {
	mu    sync.Mutex
	spans []sdktrace.ReadOnlySpan
}

func newSpanExporter() *spanExporter {
	return &spanExporter{}
}

func (exporter *spanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	exporter.spans = append(exporter.spans, spans...)
	return nil
}

func (exporter *spanExporter) Shutdown(context.Context) error {
	return nil
}

func (exporter *spanExporter) Reset() {
	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	exporter.spans = nil
}

func (exporter *spanExporter) Snapshot() []sdktrace.ReadOnlySpan {
	exporter.mu.Lock()
	defer exporter.mu.Unlock()

	out := make([]sdktrace.ReadOnlySpan, len(exporter.spans))
	copy(out, exporter.spans)
	return out
}
