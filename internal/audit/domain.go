// Package audit records catalog mutations as an asynchronous audit trail.
// Mutating handlers enqueue records; the worker binary persists them.
package audit

import (
	"context"
	"time"
)

// TypeRecord is the asynq task type for audit records.
const TypeRecord = "audit:record"

// Record is one audit trail entry.
type Record struct {
	ActorID  int64          `json:"actor_id"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID int64          `json:"entity_id"`
	Meta     map[string]any `json:"meta,omitempty"`
	At       time.Time      `json:"at"`
}

// Recorder accepts audit records. Implementations must never fail the calling
// request; enqueue problems are logged and swallowed.
type Recorder interface {
	Record(ctx context.Context, rec Record)
}

// Nop discards all records. Used in tests and when no queue is configured.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Record) {}
