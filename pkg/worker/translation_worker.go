package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/digibhoomi/record-translator/internal/service/translation"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/queue"
)

// TranslationWorker consumes queued translation jobs and runs them through
// the service end to end.
type TranslationWorker struct {
	BaseWorker
	service translation.Service
}

func NewTranslationWorker(cfg *Config, service translation.Service, log logger.Logger) (*TranslationWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &TranslationWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		service: service,
	}

	w.registerHandlers()
	return w, nil
}

func (w *TranslationWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeTranslateDocument, w.handleTranslateDocument)
}

func (w *TranslationWorker) handleTranslateDocument(ctx context.Context, t *asynq.Task) error {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal task",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	if task.ID == "" || task.Payload == nil {
		return fmt.Errorf("invalid task data: missing required fields")
	}

	w.logger.Info("Processing translation task",
		logger.String("taskId", task.ID),
		logger.Any("metadata", task.Metadata),
	)

	if err := w.service.HandleTranslationTask(ctx, &task); err != nil {
		w.logger.Error("Translation task failed",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
		return err
	}
	return nil
}

func (w *TranslationWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
