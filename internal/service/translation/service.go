// Package translation is the application service behind the HTTP API and the
// worker: upload validation, OCR extraction, the translation pipeline, task
// queueing and artifact storage.
package translation

import (
	"context"
	"mime/multipart"

	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/internal/pipeline"
	"github.com/digibhoomi/record-translator/pkg/export"
	"github.com/digibhoomi/record-translator/pkg/queue"
)

// RequestOptions carries per-request knobs from the API layer.
type RequestOptions struct {
	// Priority selects the queue for async jobs (1 critical, 2 default).
	Priority int
}

// Service is the full capability surface of the translator.
type Service interface {
	// TranslateUpload runs a document synchronously and returns the result.
	TranslateUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader, opts RequestOptions) (*models.TranslationResult, error)

	// TranslateText runs already-extracted text through the pipeline.
	TranslateText(ctx context.Context, text string, opts RequestOptions) (*models.TranslationResult, error)

	// EnqueueDocument stores the upload and queues it for a worker.
	EnqueueDocument(ctx context.Context, file multipart.File, header *multipart.FileHeader, opts RequestOptions) (*models.ProcessingTask, error)

	// GetStatus reports progress of an async task.
	GetStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error)

	// GetArtifact fetches the stored result of a completed async task.
	GetArtifact(ctx context.Context, taskID string) (*export.Artifact, error)

	// CancelTask cancels a queued task.
	CancelTask(ctx context.Context, taskID string) error

	// HandleTranslationTask is the worker-side entry point.
	HandleTranslationTask(ctx context.Context, task *queue.Task) error

	// Terms exposes the active domain terminology mappings.
	Terms() []pipeline.TermMapping
}
