package translation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibhoomi/record-translator/internal/agent/ocr"
	"github.com/digibhoomi/record-translator/internal/agent/summarize"
	"github.com/digibhoomi/record-translator/internal/agent/translate"
	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/internal/pipeline"
	"github.com/digibhoomi/record-translator/internal/utils/validator"
	"github.com/digibhoomi/record-translator/pkg/export"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/queue"
)

// textExtractor reads the whole document as one page of text.
type textExtractor struct{}

func (textExtractor) CanProcess(mime string) bool { return mime == "application/pdf" }

func (textExtractor) ExtractPages(ctx context.Context, r io.Reader) ([]models.RawPage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return []models.RawPage{{Index: 0, Text: string(data)}}, nil
}

func (textExtractor) Close() error { return nil }

type echoCapability struct{}

func (echoCapability) Translate(ctx context.Context, req translate.Request) (string, error) {
	return req.Text, nil
}

type fixedSummarizer struct{ out string }

func (s fixedSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.out, nil
}

var _ summarize.Capability = fixedSummarizer{}

// memQueue is an in-memory queue.Queue for tests.
type memQueue struct {
	mu       sync.Mutex
	enqueued []*queue.Task
	statuses map[string][]*queue.TaskStatus
}

func newMemQueue() *memQueue {
	return &memQueue{statuses: make(map[string][]*queue.TaskStatus)}
}

func (q *memQueue) Enqueue(ctx context.Context, task *queue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, task)
	q.statuses[task.ID] = append(q.statuses[task.ID], &queue.TaskStatus{
		TaskID: task.ID,
		Status: queue.StatusPending,
	})
	return nil
}

func (q *memQueue) GetTaskStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	history := q.statuses[taskID]
	if len(history) == 0 {
		return nil, fmt.Errorf("task not found: %s", taskID)
	}
	return history[len(history)-1], nil
}

func (q *memQueue) CancelTask(ctx context.Context, taskID string) error {
	return q.SaveStatus(ctx, &queue.TaskStatus{TaskID: taskID, Status: queue.StatusCancelled})
}

func (q *memQueue) SaveStatus(ctx context.Context, status *queue.TaskStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statuses[status.TaskID] = append(q.statuses[status.TaskID], status)
	return nil
}

func (q *memQueue) history(taskID string) []*queue.TaskStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*queue.TaskStatus(nil), q.statuses[taskID]...)
}

// memStorage is an in-memory storage.Storage for tests.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return key, nil
}

func (s *memStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	return nil
}

func newTestService(t *testing.T) (Service, *memQueue, *memStorage) {
	t.Helper()

	log := logger.NewTestLogger()

	registry := ocr.NewRegistry(log)
	registry.Register(textExtractor{})

	pipe := pipeline.New(
		pipeline.Config{Concurrency: 2},
		echoCapability{},
		fixedSummarizer{out: "A synopsis."},
		log,
	)

	q := newMemQueue()
	store := newMemStorage()
	v := validator.NewUploadValidator(log, nil)

	return NewService(registry, pipe, v, q, store, log, nil), q, store
}

func pdfUpload(t *testing.T, filename, text string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	// A %PDF prefix keeps MIME sniffing happy; the test extractor treats the
	// whole object as text.
	_, err = part.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/v1/translate", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	return file, header
}

const recordText = "%PDF-1.4 Survey No. 45, Owner: Ram Lal, Village: Atmapur."

func TestTranslateText(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.TranslateText(context.Background(), "Survey No. 45, Owner: Ram Lal.", RequestOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"45"}, result.ExtractedFields[models.FieldSurveyNumber])
	assert.Equal(t, "A synopsis.", result.Summary)
	assert.Equal(t, 1, result.PagesProcessed)
}

func TestTranslateUpload(t *testing.T) {
	svc, _, _ := newTestService(t)
	file, header := pdfUpload(t, "record.pdf", recordText)

	result, err := svc.TranslateUpload(context.Background(), file, header, RequestOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.TranslatedText, "Ram Lal")
	assert.Equal(t, []string{"Atmapur"}, result.ExtractedFields[models.FieldVillage])
}

func TestTranslateUpload_RejectsBadExtension(t *testing.T) {
	svc, _, _ := newTestService(t)
	file, header := pdfUpload(t, "record.exe", "MZ payload")

	_, err := svc.TranslateUpload(context.Background(), file, header, RequestOptions{})

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.NotEmpty(t, uploadErr.Errors)
}

func TestEnqueueDocument(t *testing.T) {
	svc, q, store := newTestService(t)
	file, header := pdfUpload(t, "record.pdf", recordText)

	task, err := svc.EnqueueDocument(context.Background(), file, header, RequestOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, queue.TaskTypeTranslateDocument, task.Type)
	assert.Equal(t, 2, task.Priority)
	assert.Equal(t, "record.pdf", task.Metadata["filename"])

	require.Len(t, q.enqueued, 1)
	queued := q.enqueued[0]
	assert.Equal(t, task.ID, queued.ID)

	fileKey, _ := queued.Payload["fileKey"].(string)
	assert.Equal(t, "uploads/"+task.ID+".pdf", fileKey)
	_, err = store.Get(context.Background(), fileKey)
	assert.NoError(t, err)
}

func TestEnqueueDocument_PriorityOverride(t *testing.T) {
	svc, q, _ := newTestService(t)
	file, header := pdfUpload(t, "record.pdf", recordText)

	task, err := svc.EnqueueDocument(context.Background(), file, header, RequestOptions{Priority: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, task.Priority)
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, 1, q.enqueued[0].Priority)
}

func TestHandleTranslationTask(t *testing.T) {
	svc, q, store := newTestService(t)

	fileKey := "uploads/task-1.pdf"
	_, err := store.Store(context.Background(), strings.NewReader(recordText), fileKey)
	require.NoError(t, err)

	task := &queue.Task{
		ID:   "task-1",
		Type: queue.TaskTypeTranslateDocument,
		Payload: map[string]interface{}{
			"fileKey":  fileKey,
			"filename": "record.pdf",
			"type":     ".pdf",
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, svc.HandleTranslationTask(context.Background(), task))

	// Result artifact persisted under the task's result key.
	data, err := store.Get(context.Background(), export.ArtifactKey("task-1"))
	require.NoError(t, err)
	raw, err := io.ReadAll(data)
	require.NoError(t, err)
	artifact, err := export.UnmarshalArtifact(raw)
	require.NoError(t, err)
	assert.Equal(t, "task-1", artifact.TaskID)
	assert.Equal(t, "record.pdf", artifact.Filename)
	assert.Contains(t, artifact.Result.TranslatedText, "Ram Lal")

	// Progress flowed into the status store and finished completed.
	history := q.history("task-1")
	require.NotEmpty(t, history)
	final := history[len(history)-1]
	assert.Equal(t, queue.StatusCompleted, final.Status)
	assert.Equal(t, export.ArtifactKey("task-1"), final.ResultKey)
	assert.Equal(t, 1.0, final.Progress)

	var sawRunning bool
	for _, st := range history {
		if st.Status == queue.StatusRunning {
			sawRunning = true
		}
	}
	assert.True(t, sawRunning)
}

func TestHandleTranslationTask_InvalidPayload(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.Error(t, svc.HandleTranslationTask(context.Background(), nil))
	assert.Error(t, svc.HandleTranslationTask(context.Background(), &queue.Task{ID: "x", Payload: map[string]interface{}{}}))
}

func TestHandleTranslationTask_MissingUpload(t *testing.T) {
	svc, q, _ := newTestService(t)

	task := &queue.Task{
		ID: "task-gone",
		Payload: map[string]interface{}{
			"fileKey": "uploads/task-gone.pdf",
			"type":    ".pdf",
		},
		CreatedAt: time.Now(),
	}
	err := svc.HandleTranslationTask(context.Background(), task)
	require.Error(t, err)

	status, err := q.GetTaskStatus(context.Background(), "task-gone")
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, status.Status)
	assert.NotEmpty(t, status.Error)
}

func TestGetStatus(t *testing.T) {
	svc, q, _ := newTestService(t)

	require.NoError(t, q.SaveStatus(context.Background(), &queue.TaskStatus{
		TaskID:   "task-2",
		Status:   queue.StatusRunning,
		Phase:    "translating",
		Progress: 0.5,
	}))

	task, err := svc.GetStatus(context.Background(), "task-2")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRunning, task.Status)
	assert.Equal(t, "translating", task.Phase)
	assert.Equal(t, 0.5, task.Progress)
}

func TestGetStatus_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetStatus(context.Background(), "missing")
	assert.Error(t, err)
}

func TestGetArtifact(t *testing.T) {
	svc, q, store := newTestService(t)

	result := &models.TranslationResult{TranslatedText: "done"}
	data, err := export.MarshalArtifact("task-3", "a.pdf", result)
	require.NoError(t, err)
	_, err = store.Store(context.Background(), bytes.NewReader(data), export.ArtifactKey("task-3"))
	require.NoError(t, err)
	require.NoError(t, q.SaveStatus(context.Background(), &queue.TaskStatus{
		TaskID: "task-3",
		Status: queue.StatusCompleted,
	}))

	artifact, err := svc.GetArtifact(context.Background(), "task-3")
	require.NoError(t, err)
	assert.Equal(t, "done", artifact.Result.TranslatedText)
}

func TestGetArtifact_NotCompleted(t *testing.T) {
	svc, q, _ := newTestService(t)

	require.NoError(t, q.SaveStatus(context.Background(), &queue.TaskStatus{
		TaskID: "task-4",
		Status: queue.StatusRunning,
	}))

	_, err := svc.GetArtifact(context.Background(), "task-4")
	assert.Error(t, err)
}

func TestCancelTask(t *testing.T) {
	svc, q, _ := newTestService(t)

	require.NoError(t, q.SaveStatus(context.Background(), &queue.TaskStatus{
		TaskID: "task-5",
		Status: queue.StatusPending,
	}))
	require.NoError(t, svc.CancelTask(context.Background(), "task-5"))

	status, err := q.GetTaskStatus(context.Background(), "task-5")
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCancelled, status.Status)
}

func TestTerms(t *testing.T) {
	svc, _, _ := newTestService(t)

	terms := svc.Terms()
	assert.NotEmpty(t, terms)
}
