// Package observability provides OpenTelemetry tracing and metrics for the
// transcription pipeline.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, tracerCfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, meterCfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("scribe"))
//	metrics.RecordStage(ctx, "transcribe", elapsed)
//
// When no OTLP endpoint is configured, callers skip Init entirely; StartSpan
// and the Metrics instruments then run against the no-op global providers.
package observability
