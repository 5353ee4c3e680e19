// Package queue wraps asynq for background translation jobs. Task progress
// lives in redis keyed by task ID so the API can poll while a worker runs.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Task types handled by the translation worker.
const (
	TaskTypeTranslateDocument = "translate:document"
)

// Status values stored for a task.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Queue is the job transport used by the API and the worker.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)
	CancelTask(ctx context.Context, taskID string) error
	SaveStatus(ctx context.Context, status *TaskStatus) error
}

// Task is one queued translation job. Payload carries the storage key of the
// uploaded document plus request options.
type Task struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Priority  int                    `json:"priority"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  map[string]string      `json:"metadata"`
	CreatedAt time.Time              `json:"createdAt"`
}

// TaskStatus is the redis-stored progress record. Phase tracks the pipeline
// stage ("translating", "structuring", ...) behind the numeric progress.
type TaskStatus struct {
	TaskID     string    `json:"taskId"`
	Status     string    `json:"status"`
	Phase      string    `json:"phase,omitempty"`
	Progress   float64   `json:"progress"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	ResultKey  string    `json:"resultKey,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// AsynqQueue implements Queue on asynq plus a raw redis client for status.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redis     *redis.Client
}

type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MaxRetries    int
	RetryDelay    time.Duration
}

func NewAsynqQueue(cfg *QueueConfig) (*AsynqQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redis:     redisClient,
	}, nil
}

// Enqueue submits the task and seeds its pending status record.
func (q *AsynqQueue) Enqueue(ctx context.Context, task *Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Minute),
		asynq.TaskID(task.ID),
	}

	switch task.Priority {
	case 1:
		opts = append(opts, asynq.Queue("critical"))
	case 2:
		opts = append(opts, asynq.Queue("default"))
	default:
		opts = append(opts, asynq.Queue("low"))
	}

	t := asynq.NewTask(task.Type, payload, opts...)
	if _, err := q.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return q.SaveStatus(ctx, &TaskStatus{
		TaskID:    task.ID,
		Status:    StatusPending,
		StartedAt: time.Now(),
	})
}

// GetTaskStatus reads the redis status record, falling back to asynq queue
// state for tasks that never got one.
func (q *AsynqQueue) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	key := statusKey(taskID)
	data, err := q.redis.Get(ctx, key).Bytes()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	if err == nil {
		var status TaskStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status: %w", err)
		}
		return &status, nil
	}

	queues := []string{"critical", "default", "low"}
	var info *asynq.TaskInfo
	var lastErr error

	for _, queueName := range queues {
		info, err = q.inspector.GetTaskInfo(queueName, taskID)
		if err == nil {
			break
		}
		lastErr = err
	}
	if lastErr != nil && info == nil {
		return nil, fmt.Errorf("task not found in any queue: %w", lastErr)
	}

	return convertAsynqStatus(info), nil
}

// CancelTask removes the task from its queue and marks the status record.
func (q *AsynqQueue) CancelTask(ctx context.Context, taskID string) error {
	queues := []string{"critical", "default", "low"}
	var lastErr error

	for _, queueName := range queues {
		if err := q.inspector.DeleteTask(queueName, taskID); err == nil {
			return q.SaveStatus(ctx, &TaskStatus{
				TaskID:     taskID,
				Status:     StatusCancelled,
				FinishedAt: time.Now(),
			})
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("failed to cancel task: %w", lastErr)
}

// SaveStatus writes the status record with a 24h TTL.
func (q *AsynqQueue) SaveStatus(ctx context.Context, status *TaskStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := q.redis.Set(ctx, statusKey(status.TaskID), data, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

// Depth counts queued and in-flight tasks across the priority queues. Queues
// that have never seen a task are skipped.
func (q *AsynqQueue) Depth() int {
	total := 0
	for _, queueName := range []string{"critical", "default", "low"} {
		info, err := q.inspector.GetQueueInfo(queueName)
		if err != nil {
			continue
		}
		total += info.Pending + info.Active + info.Retry
	}
	return total
}

// WatchDepth publishes Depth to gauge every interval until ctx ends.
func (q *AsynqQueue) WatchDepth(ctx context.Context, gauge prometheus.Gauge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			gauge.Set(float64(q.Depth()))
		case <-ctx.Done():
			return
		}
	}
}

func statusKey(taskID string) string {
	return fmt.Sprintf("task_status:%s", taskID)
}

func convertAsynqStatus(info *asynq.TaskInfo) *TaskStatus {
	status := &TaskStatus{
		TaskID:    info.ID,
		StartedAt: info.NextProcessAt,
	}

	switch info.State {
	case asynq.TaskStatePending:
		status.Status = StatusPending
	case asynq.TaskStateActive:
		status.Status = StatusRunning
		status.Progress = 0.5
	case asynq.TaskStateCompleted:
		status.Status = StatusCompleted
		status.Progress = 1.0
		status.FinishedAt = info.CompletedAt
	case asynq.TaskStateRetry, asynq.TaskStateArchived:
		status.Status = StatusFailed
		status.Error = info.LastErr
	}

	return status
}
