package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"staging-pro-backend/internal/notify"
	"staging-pro-backend/internal/resend"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger.
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Start runs the e-mail worker in the background and returns a stop
// function for graceful shutdown.
func Start(redisURL string, logger *slog.Logger, deliverer notify.Deliverer) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSendEmail, HandleSendEmail(logger, deliverer))

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	logger.Info("email worker started", "concurrency", 5)
	return srv.Shutdown, nil
}

// HandleSendEmail delivers one queued message. Rejections that cannot
// succeed on retry skip the remaining attempts.
func HandleSendEmail(logger *slog.Logger, deliverer notify.Deliverer) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var msg notify.Message
		if err := json.Unmarshal(task.Payload(), &msg); err != nil {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}
		if msg.To == "" {
			return fmt.Errorf("email has no recipient: %w", asynq.SkipRetry)
		}

		err := deliverer.Deliver(ctx, msg)
		if err == nil {
			logger.Info("email sent", "kind", msg.Kind, "submission_id", msg.OrderID)
			return nil
		}

		var statusErr *resend.StatusError
		if errors.Is(err, resend.ErrNotConfigured) || (errors.As(err, &statusErr) && !statusErr.Temporary()) {
			logger.Warn("email rejected", "kind", msg.Kind, "submission_id", msg.OrderID, "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to send email: %w", err)
	}
}

func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Warn(
			"task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		if retried >= maxRetry {
			logger.Warn("task archived after exhausting retries", "task_type", task.Type())
		}
	}
}
