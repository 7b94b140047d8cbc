package endpoint_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/scribe/llm"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/pipeline"
	"github.com/skillsenselab/scribe/punctuate"
	"github.com/skillsenselab/scribe/server/endpoint"
	"github.com/skillsenselab/scribe/server/middleware"
	"github.com/skillsenselab/scribe/staging"
	"github.com/skillsenselab/scribe/transcription"
)

type stubEngine struct {
	result    *transcription.Result
	err       error
	available bool
	calls     int
	lastTask  transcription.Task
}

func (e *stubEngine) Name() string { return "whisper" }

func (e *stubEngine) IsAvailable(ctx context.Context) bool { return e.available }

func (e *stubEngine) Transcribe(ctx context.Context, path string, task transcription.Task) (*transcription.Result, error) {
	e.calls++
	e.lastTask = task
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("staged file missing: %w", err)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

type stubLLM struct {
	reply     string
	err       error
	available bool
	calls     int
}

func (m *stubLLM) Name() string { return "openai" }

func (m *stubLLM) IsAvailable(ctx context.Context) bool { return m.available }

func (m *stubLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Content: m.reply}, nil
}

const (
	testUser = "scribe"
	testPass = "hunter2"
)

func newTestRouter(t *testing.T, engine *stubEngine, model *stubLLM) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := staging.New(t.TempDir())
	if err != nil {
		t.Fatalf("staging store: %v", err)
	}

	log := logger.NewDefault("scribe-test")
	svc := pipeline.New(engine, punctuate.New(model, 0.3), store, nil, log)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.BasicAuth(middleware.BasicAuthConfig{
		Username:  testUser,
		Password:  testPass,
		SkipPaths: []string{"/health", "/version"},
	}))
	r.POST("/transcribe", endpoint.Transcribe(svc))
	r.GET("/health", endpoint.Health("scribe", engine, model))
	r.GET("/version", endpoint.Version("scribe"))
	return r
}

func multipartUpload(t *testing.T, filename, contentType, task string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if task != "" {
		if err := w.WriteField("task", task); err != nil {
			t.Fatalf("write task: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func postTranscribe(t *testing.T, r *gin.Engine, body io.Reader, contentType string, withAuth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	if withAuth {
		cred := base64.StdEncoding.EncodeToString([]byte(testUser + ":" + testPass))
		req.Header.Set("Authorization", "Basic "+cred)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, w.Body.String())
	}
	return doc
}

func TestTranscribeSuccess(t *testing.T) {
	engine := &stubEngine{
		available: true,
		result: &transcription.Result{
			Language: "hi",
			Duration: 1.2,
			Text:     "नमस्ते दुनिया",
		},
	}
	model := &stubLLM{available: true, reply: "नमस्ते, दुनिया।"}
	r := newTestRouter(t, engine, model)

	body, ct := multipartUpload(t, "greeting.mp3", "audio/mpeg", "", []byte("fake-mp3-bytes"))
	w := postTranscribe(t, r, body, ct, true)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	doc := decodeJSON(t, w)
	if doc["language"] != "hi" {
		t.Errorf("language = %v", doc["language"])
	}
	if doc["duration"] != 1.2 {
		t.Errorf("duration = %v", doc["duration"])
	}
	if doc["raw_text"] != "नमस्ते दुनिया" {
		t.Errorf("raw_text = %v", doc["raw_text"])
	}
	if doc["punctuated_text"] != "नमस्ते, दुनिया।" {
		t.Errorf("punctuated_text = %v", doc["punctuated_text"])
	}
}

func TestTranscribeWithoutCredentialsNeverReachesPipeline(t *testing.T) {
	engine := &stubEngine{available: true}
	model := &stubLLM{available: true}
	r := newTestRouter(t, engine, model)

	// An upload that would also fail validation: auth must win.
	body, ct := multipartUpload(t, "notes.txt", "text/plain", "", []byte("hello"))
	w := postTranscribe(t, r, body, ct, false)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != "Basic" {
		t.Fatalf("expected Basic challenge, got %q", got)
	}
	if w.Body.String() != "Unauthorized" {
		t.Fatalf("body = %q", w.Body.String())
	}
	if engine.calls != 0 || model.calls != 0 {
		t.Fatal("backends must not be invoked for unauthenticated requests")
	}
}

func TestTranscribeRejectsUnsupportedFileType(t *testing.T) {
	engine := &stubEngine{available: true}
	model := &stubLLM{available: true}
	r := newTestRouter(t, engine, model)

	body, ct := multipartUpload(t, "slides.pdf", "application/pdf", "", []byte("%PDF"))
	w := postTranscribe(t, r, body, ct, true)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	doc := decodeJSON(t, w)
	detail, _ := doc["detail"].(string)
	if !strings.Contains(detail, "Unsupported file type: '.pdf'") {
		t.Errorf("detail = %q", detail)
	}
	if !strings.Contains(detail, "Allowed types are:") {
		t.Errorf("detail missing allowed list: %q", detail)
	}
	if engine.calls != 0 {
		t.Fatal("engine must not be invoked for rejected uploads")
	}
	if model.calls != 0 {
		t.Fatal("model must not be invoked for rejected uploads")
	}
}

func TestTranscribeMissingFilePart(t *testing.T) {
	engine := &stubEngine{available: true}
	model := &stubLLM{available: true}
	r := newTestRouter(t, engine, model)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("task", "transcribe"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	mw.Close()

	w := postTranscribe(t, r, &buf, mw.FormDataContentType(), true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	doc := decodeJSON(t, w)
	if _, ok := doc["detail"]; !ok {
		t.Fatalf("expected detail field, got %s", w.Body.String())
	}
}

func TestTranscribeRejectsUnknownTask(t *testing.T) {
	engine := &stubEngine{available: true}
	model := &stubLLM{available: true}
	r := newTestRouter(t, engine, model)

	body, ct := multipartUpload(t, "a.wav", "audio/wav", "summarize", []byte("RIFF"))
	w := postTranscribe(t, r, body, ct, true)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if engine.calls != 0 {
		t.Fatal("engine must not be invoked for invalid task")
	}
}

func TestTranscribeForwardsTranslateTask(t *testing.T) {
	engine := &stubEngine{
		available: true,
		result:    &transcription.Result{Language: "de", Duration: 2, Text: "hello world"},
	}
	model := &stubLLM{available: true, reply: "Hello, world."}
	r := newTestRouter(t, engine, model)

	body, ct := multipartUpload(t, "a.wav", "audio/wav", "translate", []byte("RIFF"))
	w := postTranscribe(t, r, body, ct, true)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if engine.lastTask != transcription.TaskTranslate {
		t.Fatalf("task forwarded = %q", engine.lastTask)
	}
}

func TestTranscribeEngineFailureIsFatal(t *testing.T) {
	engine := &stubEngine{available: true, err: fmt.Errorf("model exploded")}
	model := &stubLLM{available: true, reply: "unused"}
	r := newTestRouter(t, engine, model)

	body, ct := multipartUpload(t, "a.wav", "audio/wav", "", []byte("RIFF"))
	w := postTranscribe(t, r, body, ct, true)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	doc := decodeJSON(t, w)
	errMsg, _ := doc["error"].(string)
	if !strings.Contains(errMsg, "model exploded") {
		t.Errorf("error body should carry the engine error, got %q", errMsg)
	}
	if model.calls != 0 {
		t.Fatal("model must not run after a fatal engine failure")
	}
}

func TestTranscribeModelFailureDegradesGracefully(t *testing.T) {
	raw := "this is the raw transcript"
	engine := &stubEngine{
		available: true,
		result:    &transcription.Result{Language: "en", Duration: 3.5, Text: raw},
	}
	model := &stubLLM{available: true, err: fmt.Errorf("rate limited")}
	r := newTestRouter(t, engine, model)

	body, ct := multipartUpload(t, "a.wav", "audio/wav", "", []byte("RIFF"))
	w := postTranscribe(t, r, body, ct, true)

	if w.Code != http.StatusOK {
		t.Fatalf("expected degraded 200, got %d: %s", w.Code, w.Body.String())
	}
	doc := decodeJSON(t, w)
	if doc["raw_text"] != raw {
		t.Errorf("raw_text must be untouched, got %v", doc["raw_text"])
	}
	punct, _ := doc["punctuated_text"].(string)
	if !strings.HasPrefix(punct, "⚠️ Punctuation skipped due to an internal error with GPT.") {
		t.Errorf("missing degradation notice: %q", punct)
	}
	if !strings.HasSuffix(punct, raw) {
		t.Errorf("degraded text must end with the raw transcript: %q", punct)
	}
}

func TestHealthReflectsBackendAvailability(t *testing.T) {
	cases := []struct {
		name       string
		engineUp   bool
		modelUp    bool
		wantCode   int
		wantStatus string
	}{
		{"all up", true, true, http.StatusOK, "healthy"},
		{"model down", true, false, http.StatusOK, "degraded"},
		{"engine down", false, true, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &stubEngine{available: tc.engineUp}
			model := &stubLLM{available: tc.modelUp}
			r := newTestRouter(t, engine, model)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}
			doc := decodeJSON(t, w)
			if doc["status"] != tc.wantStatus {
				t.Errorf("status = %v", doc["status"])
			}
		})
	}
}

func TestVersionIsOpenWithoutCredentials(t *testing.T) {
	r := newTestRouter(t, &stubEngine{available: true}, &stubLLM{available: true})

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	doc := decodeJSON(t, w)
	if doc["service"] != "scribe" {
		t.Errorf("service = %v", doc["service"])
	}
	if _, ok := doc["version"]; !ok {
		t.Error("missing version field")
	}
}
