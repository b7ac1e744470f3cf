package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Writer persists dequeued audit records into audit_logs.
type Writer struct {
	pool *pgxpool.Pool
}

// NewWriter returns a new Writer.
func NewWriter(pool *pgxpool.Pool) *Writer {
	return &Writer{pool: pool}
}

// HandleRecord is the asynq handler for TypeRecord tasks.
func (w *Writer) HandleRecord(ctx context.Context, task *asynq.Task) error {
	var rec Record
	if err := json.Unmarshal(task.Payload(), &rec); err != nil {
		return fmt.Errorf("audit: decode record: %v: %w", err, asynq.SkipRetry)
	}
	return w.Insert(ctx, rec)
}

// Insert writes one record.
func (w *Writer) Insert(ctx context.Context, rec Record) error {
	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return fmt.Errorf("audit: marshal meta: %w", err)
	}
	_, err = w.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ActorID, rec.Action, rec.Entity, rec.EntityID, metaJSON, rec.At)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}
