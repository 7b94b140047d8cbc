package pipeline_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/llm"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/punctuate"
	"github.com/skillsenselab/scribe/pipeline"
	"github.com/skillsenselab/scribe/staging"
	"github.com/skillsenselab/scribe/transcription"
)

// stubEngine is a canned transcription.Provider.
type stubEngine struct {
	calls  int
	result *transcription.Result
	err    error
}

func (e *stubEngine) Name() string                       { return "stub-engine" }
func (e *stubEngine) IsAvailable(_ context.Context) bool { return true }
func (e *stubEngine) Transcribe(_ context.Context, path string, _ transcription.Task) (*transcription.Result, error) {
	e.calls++
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NotFound(path)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

// stubLLM is a canned llm.Provider.
type stubLLM struct {
	calls   int
	content string
	err     error
}

func (s *stubLLM) Name() string                       { return "stub-llm" }
func (s *stubLLM) IsAvailable(_ context.Context) bool { return true }
func (s *stubLLM) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

func newService(t *testing.T, engine *stubEngine, model *stubLLM) (*pipeline.Service, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := staging.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	svc := pipeline.New(engine, punctuate.New(model, 0), store, nil, logger.NewDefault("test"))
	return svc, dir
}

func hindiEngine() *stubEngine {
	return &stubEngine{
		result: &transcription.Result{
			Language: "hi",
			Duration: 1.2,
			Text:     "नमस्ते दुनिया",
			Segments: []transcription.Segment{{Start: 0, End: 1.2}},
		},
	}
}

func wavUpload(content string) pipeline.Upload {
	return pipeline.Upload{
		Filename:    "speech.wav",
		ContentType: "audio/wav",
		Data:        strings.NewReader(content),
	}
}

func TestTranscribeSuccess(t *testing.T) {
	engine := hindiEngine()
	model := &stubLLM{content: "नमस्ते, दुनिया।"}
	svc, _ := newService(t, engine, model)

	result, err := svc.Transcribe(context.Background(), wavUpload("bytes"), transcription.TaskTranscribe)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if result.Language != "hi" {
		t.Errorf("unexpected language: %q", result.Language)
	}
	if result.Duration != 1.2 {
		t.Errorf("unexpected duration: %v", result.Duration)
	}
	if result.RawText != "नमस्ते दुनिया" {
		t.Errorf("raw text must match the engine output exactly: %q", result.RawText)
	}
	if result.PunctuatedText != "नमस्ते, दुनिया।" {
		t.Errorf("unexpected punctuated text: %q", result.PunctuatedText)
	}
	if result.Degraded() {
		t.Error("successful enrichment must not be degraded")
	}
}

func TestTranscribeDegradesOnEnrichmentFailure(t *testing.T) {
	engine := hindiEngine()
	model := &stubLLM{err: stderrors.New("quota exceeded")}
	svc, _ := newService(t, engine, model)

	result, err := svc.Transcribe(context.Background(), wavUpload("bytes"), transcription.TaskTranscribe)
	if err != nil {
		t.Fatalf("enrichment failure must not fail the request: %v", err)
	}

	if !result.Degraded() {
		t.Error("expected degraded result")
	}
	if result.RawText != "नमस्ते दुनिया" {
		t.Errorf("raw text must be unchanged: %q", result.RawText)
	}
	if !strings.HasPrefix(result.PunctuatedText, "⚠️") {
		t.Errorf("degraded text must start with the warning marker: %q", result.PunctuatedText)
	}
	if !strings.HasSuffix(result.PunctuatedText, "नमस्ते दुनिया") {
		t.Errorf("degraded text must carry the raw transcript verbatim: %q", result.PunctuatedText)
	}
}

func TestTranscribeRejectsInvalidUploadBeforeEngine(t *testing.T) {
	engine := hindiEngine()
	model := &stubLLM{content: "x"}
	svc, dir := newService(t, engine, model)

	upload := pipeline.Upload{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Data:        strings.NewReader("not media"),
	}
	_, err := svc.Transcribe(context.Background(), upload, transcription.TaskTranscribe)
	if err == nil {
		t.Fatal("expected rejection")
	}

	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.HTTPStatus != 400 {
		t.Fatalf("expected a 400 AppError, got %v", err)
	}
	if engine.calls != 0 {
		t.Error("engine must never be invoked for a rejected upload")
	}
	if model.calls != 0 {
		t.Error("enrichment must never be invoked for a rejected upload")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Error("nothing may be staged for a rejected upload")
	}
}

func TestTranscribeEngineFailureIsFatal(t *testing.T) {
	engine := &stubEngine{err: stderrors.New("model exploded")}
	model := &stubLLM{content: "x"}
	svc, _ := newService(t, engine, model)

	_, err := svc.Transcribe(context.Background(), wavUpload("bytes"), transcription.TaskTranscribe)
	if err == nil {
		t.Fatal("expected fatal error")
	}

	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.HTTPStatus != 500 {
		t.Fatalf("expected a 500 AppError, got %v", err)
	}
	if !strings.Contains(appErr.Message, "model exploded") {
		t.Errorf("transcription failures must carry the engine error text: %q", appErr.Message)
	}
	if model.calls != 0 {
		t.Error("enrichment must not run after a transcription failure")
	}
}

func TestStagedFileRemovedOnAllPaths(t *testing.T) {
	tests := []struct {
		name   string
		engine *stubEngine
		model  *stubLLM
	}{
		{"success", hindiEngine(), &stubLLM{content: "ok"}},
		{"degraded", hindiEngine(), &stubLLM{err: stderrors.New("down")}},
		{"engine failure", &stubEngine{err: stderrors.New("boom")}, &stubLLM{content: "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := newService(t, tt.engine, tt.model)
			_, _ = svc.Transcribe(context.Background(), wavUpload("bytes"), transcription.TaskTranscribe)

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			for _, e := range entries {
				t.Errorf("staged file leaked: %s", filepath.Join(dir, e.Name()))
			}
		})
	}
}
