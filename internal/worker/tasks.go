package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"staging-pro-backend/internal/notify"
)

const TaskSendEmail = "email:send"

// NewEmailTask wraps a rendered message. Delivery is retried up to three
// times before the task is archived.
func NewEmailTask(msg notify.Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskSendEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

// Queue enqueues e-mail tasks on Redis. It implements notify.Queue.
type Queue struct {
	client *asynq.Client
}

func NewQueue(redisURL string) (*Queue, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Queue{client: asynq.NewClient(opt)}, nil
}

func (q *Queue) Enqueue(ctx context.Context, msg notify.Message) error {
	task, err := NewEmailTask(msg)
	if err != nil {
		return fmt.Errorf("failed to build email task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	return nil
}

func (q *Queue) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}
