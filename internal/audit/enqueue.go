package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Enqueuer pushes audit records onto the task queue.
type Enqueuer struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewEnqueuer constructs an Enqueuer over an existing redis connection.
// The caller owns the connection and closes it.
func NewEnqueuer(rdb redis.UniversalClient, logger *slog.Logger) *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClientFromRedisClient(rdb),
		logger: logger,
	}
}

// Record enqueues the audit entry. Failures are logged, never propagated: the
// audit trail is best effort and must not fail the mutation it describes.
func (e *Enqueuer) Record(ctx context.Context, rec Record) {
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		e.logger.Error("audit marshal", slog.Any("error", err))
		return
	}
	task := asynq.NewTask(TypeRecord, payload, asynq.MaxRetry(5), asynq.Queue("audit"))
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		e.logger.Error("audit enqueue",
			slog.String("action", rec.Action),
			slog.String("entity", rec.Entity),
			slog.Any("error", err))
	}
}
