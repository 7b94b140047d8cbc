package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/scribe/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments for the transcription pipeline.
type Metrics struct {
	transcribeTotal   metric.Int64Counter
	transcribeActive  metric.Int64UpDownCounter
	stageDuration     metric.Float64Histogram
	degradedTotal     metric.Int64Counter
	mediaDurationSecs metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	transcribeTotal, err := meter.Int64Counter("transcribe.total",
		metric.WithDescription("Total transcription requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcribe.total counter: %w", err)
	}

	transcribeActive, err := meter.Int64UpDownCounter("transcribe.active",
		metric.WithDescription("Transcription requests currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcribe.active gauge: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("pipeline.stage.duration",
		metric.WithDescription("Duration of pipeline stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.stage.duration histogram: %w", err)
	}

	degradedTotal, err := meter.Int64Counter("enrichment.degraded.total",
		metric.WithDescription("Responses served with the raw-text fallback"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating enrichment.degraded.total counter: %w", err)
	}

	mediaDurationSecs, err := meter.Float64Histogram("transcribe.media.duration",
		metric.WithDescription("Recognized speech coverage per request in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcribe.media.duration histogram: %w", err)
	}

	return &Metrics{
		transcribeTotal:   transcribeTotal,
		transcribeActive:  transcribeActive,
		stageDuration:     stageDuration,
		degradedTotal:     degradedTotal,
		mediaDurationSecs: mediaDurationSecs,
	}, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.transcribeActive.Add(ctx, 1)
}

// RecordRequestEnd decrements in-flight requests and records the outcome.
func (m *Metrics) RecordRequestEnd(ctx context.Context, outcome string) {
	m.transcribeActive.Add(ctx, -1)
	m.transcribeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordStage records one pipeline stage's duration.
func (m *Metrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordDegraded counts a response that fell back to raw text.
func (m *Metrics) RecordDegraded(ctx context.Context) {
	m.degradedTotal.Add(ctx, 1)
}

// RecordMediaDuration records the recognized speech coverage of a request.
func (m *Metrics) RecordMediaDuration(ctx context.Context, language string, seconds float64) {
	m.mediaDurationSecs.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("language", language),
	))
}
