package translation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digibhoomi/record-translator/internal/agent/ocr"
	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/internal/pipeline"
	"github.com/digibhoomi/record-translator/internal/utils/validator"
	"github.com/digibhoomi/record-translator/pkg/export"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/queue"
	"github.com/digibhoomi/record-translator/pkg/storage"
)

// UploadError reports a rejected upload; the handler maps it to a 400.
type UploadError struct {
	Errors []validator.ValidationError
}

func (e *UploadError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid upload"
	}
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}

type TranslationService struct {
	registry  *ocr.Registry
	pipeline  *pipeline.Pipeline
	validator *validator.UploadValidator
	queue     queue.Queue
	storage   storage.Storage
	logger    logger.Logger
	config    *ServiceConfig
}

type ServiceConfig struct {
	QueuePriority   int
	RetentionPeriod time.Duration
}

func NewService(
	registry *ocr.Registry,
	pipe *pipeline.Pipeline,
	uploadValidator *validator.UploadValidator,
	q queue.Queue,
	store storage.Storage,
	log logger.Logger,
	cfg *ServiceConfig,
) Service {
	if cfg == nil {
		cfg = &ServiceConfig{
			QueuePriority:   2,
			RetentionPeriod: 24 * time.Hour,
		}
	}

	return &TranslationService{
		registry:  registry,
		pipeline:  pipe,
		validator: uploadValidator,
		queue:     q,
		storage:   store,
		logger:    log,
		config:    cfg,
	}
}

// TranslateUpload validates, extracts and translates one document in the
// request lifetime.
func (s *TranslationService) TranslateUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader, opts RequestOptions) (*models.TranslationResult, error) {
	s.logger.Info("Translating uploaded document",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	if err := s.validateUpload(header); err != nil {
		return nil, err
	}

	pages, err := s.extractPages(ctx, file, filepath.Ext(header.Filename))
	if err != nil {
		return nil, err
	}

	return s.pipeline.Run(ctx, pages)
}

// TranslateText skips OCR and feeds text straight into the pipeline.
func (s *TranslationService) TranslateText(ctx context.Context, text string, opts RequestOptions) (*models.TranslationResult, error) {
	pages := []models.RawPage{{Index: 0, Text: text}}
	return s.pipeline.Run(ctx, pages)
}

// EnqueueDocument stores the upload and hands it to the worker queue.
func (s *TranslationService) EnqueueDocument(ctx context.Context, file multipart.File, header *multipart.FileHeader, opts RequestOptions) (*models.ProcessingTask, error) {
	if err := s.validateUpload(header); err != nil {
		return nil, err
	}

	taskID := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	fileKey := fmt.Sprintf("uploads/%s%s", taskID, ext)

	if _, err := s.storage.Store(ctx, file, fileKey); err != nil {
		s.logger.Error("Failed to store upload",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	priority := opts.Priority
	if priority == 0 {
		priority = s.config.QueuePriority
	}

	task := &models.ProcessingTask{
		ID:       taskID,
		Status:   models.StatusPending,
		Type:     queue.TaskTypeTranslateDocument,
		Priority: priority,
		Metadata: map[string]string{
			"filename": header.Filename,
			"size":     fmt.Sprintf("%d", header.Size),
			"type":     ext,
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	queueTask := &queue.Task{
		ID:       taskID,
		Type:     task.Type,
		Priority: task.Priority,
		Payload: map[string]interface{}{
			"fileKey":  fileKey,
			"filename": header.Filename,
			"type":     ext,
		},
		Metadata:  task.Metadata,
		CreatedAt: task.CreatedAt,
	}

	if err := s.queue.Enqueue(ctx, queueTask); err != nil {
		s.logger.Error("Failed to enqueue task",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	s.logger.Info("Translation task queued",
		logger.String("taskId", taskID),
		logger.String("filename", header.Filename),
	)
	return task, nil
}

// HandleTranslationTask runs a queued document end to end, streaming pipeline
// progress into the status store and persisting the result artifact.
func (s *TranslationService) HandleTranslationTask(ctx context.Context, task *queue.Task) error {
	if task == nil || task.Payload == nil {
		return fmt.Errorf("invalid task: missing required data")
	}

	fileKey, _ := task.Payload["fileKey"].(string)
	ext, _ := task.Payload["type"].(string)
	filename, _ := task.Payload["filename"].(string)
	if fileKey == "" || ext == "" {
		return fmt.Errorf("invalid task payload: missing file key or type")
	}

	reader, err := s.storage.Get(ctx, fileKey)
	if err != nil {
		s.failTask(ctx, task, fmt.Errorf("failed to get upload: %w", err))
		return fmt.Errorf("failed to get upload: %w", err)
	}
	defer reader.Close()

	pages, err := s.extractPagesFromReader(ctx, reader, ext)
	if err != nil {
		s.failTask(ctx, task, err)
		return err
	}

	observer := pipeline.ObserverFunc(func(p pipeline.Progress) {
		status := &queue.TaskStatus{
			TaskID:    task.ID,
			Status:    queue.StatusRunning,
			Phase:     string(p.Phase),
			Progress:  float64(p.Percent) / 100,
			Message:   p.Message,
			StartedAt: task.CreatedAt,
		}
		if err := s.queue.SaveStatus(ctx, status); err != nil {
			s.logger.Warn("Failed to save task progress",
				logger.String("taskId", task.ID),
				logger.Error(err),
			)
		}
	})

	result, err := s.pipeline.Run(ctx, pages, observer)
	if err != nil {
		s.failTask(ctx, task, err)
		return err
	}

	artifact, err := export.MarshalArtifact(task.ID, filename, result)
	if err != nil {
		s.failTask(ctx, task, err)
		return err
	}

	resultKey := export.ArtifactKey(task.ID)
	if _, err := s.storage.Store(ctx, bytes.NewReader(artifact), resultKey); err != nil {
		s.failTask(ctx, task, fmt.Errorf("failed to store result: %w", err))
		return fmt.Errorf("failed to store result: %w", err)
	}

	finalStatus := &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     queue.StatusCompleted,
		Phase:      string(pipeline.PhaseComplete),
		Progress:   1.0,
		ResultKey:  resultKey,
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now(),
	}
	if err := s.queue.SaveStatus(ctx, finalStatus); err != nil {
		s.logger.Error("Failed to save final status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}

	s.logger.Info("Translation task completed",
		logger.String("taskId", task.ID),
		logger.Int("chunksProcessed", result.ChunksProcessed),
	)
	return nil
}

// GetStatus maps the queue's status record to the task model.
func (s *TranslationService) GetStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error) {
	status, err := s.queue.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}

	var taskStatus models.ProcessingStatus
	switch status.Status {
	case queue.StatusPending:
		taskStatus = models.StatusPending
	case queue.StatusRunning:
		taskStatus = models.StatusRunning
	case queue.StatusCompleted:
		taskStatus = models.StatusCompleted
	case queue.StatusFailed:
		taskStatus = models.StatusFailed
	case queue.StatusCancelled:
		taskStatus = models.StatusCancelled
	default:
		taskStatus = models.StatusPending
	}

	return &models.ProcessingTask{
		ID:        status.TaskID,
		Status:    taskStatus,
		Type:      queue.TaskTypeTranslateDocument,
		Progress:  status.Progress,
		Phase:     status.Phase,
		Error:     status.Error,
		Metadata:  make(map[string]string),
		CreatedAt: status.StartedAt,
		UpdatedAt: status.FinishedAt,
	}, nil
}

// GetArtifact returns the stored result of a completed task.
func (s *TranslationService) GetArtifact(ctx context.Context, taskID string) (*export.Artifact, error) {
	task, err := s.GetStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.StatusCompleted {
		return nil, fmt.Errorf("task is not completed: %s", task.Status)
	}

	reader, err := s.storage.Get(ctx, export.ArtifactKey(taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	return export.UnmarshalArtifact(data)
}

func (s *TranslationService) CancelTask(ctx context.Context, taskID string) error {
	if err := s.queue.CancelTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}

	s.logger.Info("Task cancelled",
		logger.String("taskId", taskID),
	)
	return nil
}

func (s *TranslationService) Terms() []pipeline.TermMapping {
	return s.pipeline.Lexicon().Mappings()
}

// CleanupTasks removes uploads and artifacts past the retention period.
func (s *TranslationService) CleanupTasks(ctx context.Context) error {
	threshold := time.Now().Add(-s.config.RetentionPeriod)

	if err := s.storage.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("failed to cleanup storage: %w", err)
	}

	s.logger.Info("Completed tasks cleanup",
		logger.Time("threshold", threshold),
	)
	return nil
}

func (s *TranslationService) validateUpload(header *multipart.FileHeader) error {
	result, err := s.validator.ValidateFile(header)
	if err != nil {
		return fmt.Errorf("failed to validate upload: %w", err)
	}
	if !result.IsValid {
		return &UploadError{Errors: result.Errors}
	}
	return nil
}

func (s *TranslationService) extractPages(ctx context.Context, file multipart.File, ext string) ([]models.RawPage, error) {
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}
	return s.extractPagesFromReader(ctx, file, ext)
}

func (s *TranslationService) extractPagesFromReader(ctx context.Context, reader io.Reader, ext string) ([]models.RawPage, error) {
	extractor, err := s.registry.ForFile(ext)
	if err != nil {
		return nil, err
	}

	pages, err := extractor.ExtractPages(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}
	return pages, nil
}

func (s *TranslationService) failTask(ctx context.Context, task *queue.Task, cause error) {
	status := &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     queue.StatusFailed,
		Error:      cause.Error(),
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now(),
	}
	if err := s.queue.SaveStatus(ctx, status); err != nil {
		s.logger.Error("Failed to save failure status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}
}
