package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/internal/pipeline"
	"github.com/digibhoomi/record-translator/internal/service/translation"
	"github.com/digibhoomi/record-translator/internal/utils/validator"
	"github.com/digibhoomi/record-translator/pkg/export"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/queue"
)

// stubService answers from canned values so handler behavior can be tested
// without the real pipeline.
type stubService struct {
	result   *models.TranslationResult
	task     *models.ProcessingTask
	artifact *export.Artifact
	err      error
}

func (s *stubService) TranslateUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader, opts translation.RequestOptions) (*models.TranslationResult, error) {
	return s.result, s.err
}

func (s *stubService) TranslateText(ctx context.Context, text string, opts translation.RequestOptions) (*models.TranslationResult, error) {
	return s.result, s.err
}

func (s *stubService) EnqueueDocument(ctx context.Context, file multipart.File, header *multipart.FileHeader, opts translation.RequestOptions) (*models.ProcessingTask, error) {
	return s.task, s.err
}

func (s *stubService) GetStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error) {
	return s.task, s.err
}

func (s *stubService) GetArtifact(ctx context.Context, taskID string) (*export.Artifact, error) {
	return s.artifact, s.err
}

func (s *stubService) CancelTask(ctx context.Context, taskID string) error { return s.err }

func (s *stubService) HandleTranslationTask(ctx context.Context, task *queue.Task) error {
	return s.err
}

func (s *stubService) Terms() []pipeline.TermMapping {
	return []pipeline.TermMapping{{From: "plot number", To: "Khasra number"}}
}

func newTestRouter(svc translation.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTranslationHandler(svc, logger.NewTestLogger())

	r := gin.New()
	r.POST("/translate", h.TranslateDocument)
	r.POST("/translate/text", h.TranslateText)
	r.POST("/translate/async", h.TranslateAsync)
	r.GET("/translate/status/:taskId", h.GetStatus)
	r.GET("/translate/download/:taskId", h.DownloadResult)
	r.DELETE("/translate/task/:taskId", h.CancelTask)
	r.GET("/translate/terms", h.GetTerms)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "record.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 content"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestTranslateDocument(t *testing.T) {
	svc := &stubService{result: &models.TranslationResult{TranslatedText: "translated"}}
	r := newTestRouter(svc)

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest("POST", "/translate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "translated")
}

func TestTranslateDocument_PDFOutput(t *testing.T) {
	svc := &stubService{result: &models.TranslationResult{TranslatedText: "translated"}}
	r := newTestRouter(svc)

	body, contentType := multipartUpload(t, map[string]string{"output_format": "pdf"})
	req := httptest.NewRequest("POST", "/translate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestTranslateDocument_BadOutputFormat(t *testing.T) {
	r := newTestRouter(&stubService{})

	body, contentType := multipartUpload(t, map[string]string{"output_format": "docx"})
	req := httptest.NewRequest("POST", "/translate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestTranslateDocument_NoFile(t *testing.T) {
	r := newTestRouter(&stubService{})

	req := httptest.NewRequest("POST", "/translate", strings.NewReader(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranslateDocument_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid upload", &translation.UploadError{Errors: []validator.ValidationError{{Code: "INVALID_FILE_TYPE", Message: "bad type"}}}, http.StatusBadRequest},
		{"empty document", pipeline.ErrExtractionEmpty, http.StatusBadRequest},
		{"all chunks failed", pipeline.ErrAllChunksFailed, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubService{err: tt.err})

			body, contentType := multipartUpload(t, nil)
			req := httptest.NewRequest("POST", "/translate", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestTranslateText(t *testing.T) {
	svc := &stubService{result: &models.TranslationResult{TranslatedText: "hello"}}
	r := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/translate/text", strings.NewReader(`{"text":"नमस्ते"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)
}

func TestTranslateText_MissingText(t *testing.T) {
	r := newTestRouter(&stubService{})

	req := httptest.NewRequest("POST", "/translate/text", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranslateAsync(t *testing.T) {
	svc := &stubService{task: &models.ProcessingTask{ID: "task-1", Status: models.StatusPending}}
	r := newTestRouter(svc)

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest("POST", "/translate/async", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "task-1")
}

func TestGetStatus(t *testing.T) {
	svc := &stubService{task: &models.ProcessingTask{ID: "task-1", Status: models.StatusRunning}}
	r := newTestRouter(svc)

	req := httptest.NewRequest("GET", "/translate/status/task-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetStatus_NotFound(t *testing.T) {
	r := newTestRouter(&stubService{err: errors.New("task not found")})

	req := httptest.NewRequest("GET", "/translate/status/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadResult_JSON(t *testing.T) {
	svc := &stubService{artifact: &export.Artifact{
		TaskID: "task-1",
		Result: &models.TranslationResult{TranslatedText: "done"},
	}}
	r := newTestRouter(svc)

	req := httptest.NewRequest("GET", "/translate/download/task-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "done")
}

func TestDownloadResult_PDF(t *testing.T) {
	svc := &stubService{artifact: &export.Artifact{
		TaskID:   "task-1",
		Filename: "record.pdf",
		Result:   &models.TranslationResult{TranslatedText: "done"},
	}}
	r := newTestRouter(svc)

	req := httptest.NewRequest("GET", "/translate/download/task-1?format=pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestDownloadResult_NotAvailable(t *testing.T) {
	r := newTestRouter(&stubService{err: errors.New("not completed")})

	req := httptest.NewRequest("GET", "/translate/download/task-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelTask(t *testing.T) {
	r := newTestRouter(&stubService{})

	req := httptest.NewRequest("DELETE", "/translate/task/task-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)
}

func TestGetTerms(t *testing.T) {
	r := newTestRouter(&stubService{})

	req := httptest.NewRequest("GET", "/translate/terms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "Khasra number")
}
