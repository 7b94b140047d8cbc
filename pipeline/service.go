// Package pipeline orchestrates the transcription pipeline: validate the
// upload, stage it to disk, transcribe, enrich with punctuation, respond.
//
// Failure handling is deliberately asymmetric: validation, staging, and
// transcription failures abort the request; enrichment failure degrades it.
// Punctuation is an enhancement, transcription is the product.
package pipeline

import (
	"context"
	"time"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/observability"
	"github.com/skillsenselab/scribe/punctuate"
	"github.com/skillsenselab/scribe/staging"
	"github.com/skillsenselab/scribe/transcription"
)

// Service runs the transcription pipeline. One Service is shared by all
// requests; it holds only read-only handles and is safe for concurrent use.
type Service struct {
	engine     transcription.Provider
	punctuator *punctuate.Punctuator
	store      *staging.Store
	metrics    *observability.Metrics
	log        *logger.Logger
}

// New creates a Service. metrics may be nil when observability is disabled.
func New(engine transcription.Provider, punctuator *punctuate.Punctuator, store *staging.Store, metrics *observability.Metrics, log *logger.Logger) *Service {
	return &Service{
		engine:     engine,
		punctuator: punctuator,
		store:      store,
		metrics:    metrics,
		log:        log.WithComponent("pipeline"),
	}
}

// Transcribe runs the full pipeline for one upload and returns the response
// record. Errors are always *errors.AppError carrying the HTTP status.
func (s *Service) Transcribe(ctx context.Context, upload Upload, task transcription.Task) (*Result, error) {
	if s.metrics != nil {
		s.metrics.RecordRequestStart(ctx)
	}
	result, err := s.run(ctx, upload, task)
	if s.metrics != nil {
		s.metrics.RecordRequestEnd(ctx, outcome(result, err))
	}
	return result, err
}

func (s *Service) run(ctx context.Context, upload Upload, task transcription.Task) (*Result, error) {
	// 1. Validate. Rejection here must happen before any engine work.
	if verr := transcription.ValidateUpload(upload.Filename, upload.ContentType); verr != nil {
		s.log.Warn("upload rejected", logger.Fields(
			"filename", upload.Filename,
			"content_type", upload.ContentType,
		))
		return nil, verr
	}

	// 2. Stage. The staged file is removed on every exit path.
	path, err := s.stage(ctx, upload)
	if err != nil {
		s.log.WithError(err).Error("staging failed")
		return nil, errors.Staging(err)
	}
	defer func() {
		if rmErr := s.store.Remove(path); rmErr != nil {
			s.log.WithError(rmErr).Warn("staged file not removed", logger.Fields("path", path))
		}
	}()

	// 3. Transcribe. Any failure is fatal to the request.
	tr, err := s.transcribe(ctx, path, task)
	if err != nil {
		s.log.WithError(err).Error("transcription failed", logger.Fields(logger.FieldTask, string(task)))
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.Transcription(err)
	}
	if s.metrics != nil {
		s.metrics.RecordMediaDuration(ctx, tr.Language, tr.Duration)
	}

	// 4. Enrich. Failure degrades, never aborts.
	punctuated, degraded := s.enrich(ctx, tr.Text, tr.Language)

	return &Result{
		Language:       tr.Language,
		Duration:       tr.Duration,
		RawText:        tr.Text,
		PunctuatedText: punctuated,
		degraded:       degraded,
	}, nil
}

func (s *Service) stage(ctx context.Context, upload Upload) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStage)
	defer span.End()
	start := time.Now()

	path, err := s.store.Stage(upload.Filename, upload.Data)

	if s.metrics != nil {
		s.metrics.RecordStage(ctx, "stage", time.Since(start))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return path, err
}

func (s *Service) transcribe(ctx context.Context, path string, task transcription.Task) (*transcription.Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
	defer span.End()
	start := time.Now()

	result, err := s.engine.Transcribe(ctx, path, task)

	if s.metrics != nil {
		s.metrics.RecordStage(ctx, "transcribe", time.Since(start))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return result, err
}

// enrich returns the punctuated text, or the degraded fallback when the
// enrichment engine fails for any reason. The returned bool reports
// degradation.
func (s *Service) enrich(ctx context.Context, rawText, language string) (string, bool) {
	ctx, span := observability.StartSpan(ctx, observability.SpanEnrich)
	defer span.End()
	start := time.Now()

	punctuated, err := s.punctuator.Run(ctx, rawText, language)

	if s.metrics != nil {
		s.metrics.RecordStage(ctx, "enrich", time.Since(start))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		s.log.WithError(err).Error("punctuation failed, serving raw transcription",
			logger.Fields(logger.FieldLanguage, language))
		if s.metrics != nil {
			s.metrics.RecordDegraded(ctx)
		}
		return punctuate.Degraded(rawText), true
	}
	return punctuated, false
}

func outcome(result *Result, err error) string {
	switch {
	case err != nil:
		return "error"
	case result != nil && result.Degraded():
		return "degraded"
	default:
		return "ok"
	}
}
