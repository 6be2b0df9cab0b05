// Package perf records command timings as OpenTelemetry spans kept in memory.
package perf

import (
	"context"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/meza/koikatsu-mod-manager"

type Config struct {
	Enabled bool
}

var (
	globalMu  sync.Mutex
	globalTP  *sdktrace.TracerProvider
	globalExp *spanExporter

	noopTracer = noop.NewTracerProvider().Tracer(tracerName)
)

// Init installs a fresh tracer provider. With Enabled false every span is a no-op.
func Init(cfg Config) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalTP != nil {
		if err := globalTP.Shutdown(context.Background()); err != nil {
			return err
		}
	}
	globalTP = nil
	globalExp = nil

	if !cfg.Enabled {
		return nil
	}

	exporter := newSpanExporter()
	globalExp = exporter
	globalTP = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return nil
}

func Enabled() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalTP != nil
}

// StartSpan starts a span under ctx. The returned span must be ended by the caller.
func StartSpan(ctx context.Context, name string, opts ...oteltrace.SpanStartOption) (context.Context, oteltrace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	globalMu.Lock()
	tp := globalTP
	globalMu.Unlock()

	if tp == nil {
		return noopTracer.Start(ctx, name, opts...)
	}
	return tp.Tracer(tracerName).Start(ctx, name, opts...)
}

func SnapshotSpans() ([]sdktrace.ReadOnlySpan, error) {
	globalMu.Lock()
	exporter := globalExp
	globalMu.Unlock()

	if exporter == nil {
		return nil, nil
	}
	return exporter.Snapshot(), nil
}

func Shutdown(ctx context.Context) error {
	globalMu.Lock()
	tp := globalTP
	globalMu.Unlock()

	if tp == nil {
		return nil
	}
	return tp.ForceFlush(ctx)
}

// Reset drops the tracer provider and all recorded spans.
func Reset() {
	_ = Init(Config{Enabled: false})
}
