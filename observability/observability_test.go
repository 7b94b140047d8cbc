package observability_test

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/skillsenselab/scribe/observability"
)

func TestNewMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background()) //nolint:errcheck

	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordStage(ctx, "transcribe", 1500*time.Millisecond)
	metrics.RecordMediaDuration(ctx, "hi", 4.5)
	metrics.RecordDegraded(ctx)
	metrics.RecordRequestEnd(ctx, "degraded")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("expected recorded metrics")
	}
}

func TestStartSpanWithoutInit(t *testing.T) {
	// With no tracer provider configured the no-op provider must serve spans
	// without panicking.
	ctx, span := observability.StartSpan(context.Background(), observability.SpanEnrich)
	if ctx == nil {
		t.Fatal("expected context")
	}
	span.End()
}
