package agent

import (
	"context"
	"time"
)

// Status is the lifecycle state of an agent within one run.
// Transitions follow exactly pending -> running -> completed|failed;
// completed and failed are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is the observable status and payload of one agent within one run.
// It is created when the run is initialized and mutated only by the owning
// Runner.
type Record struct {
	Name        string
	Status      Status
	Progress    int // 0-100, monotone non-decreasing
	CurrentTask string
	Payload     map[string]any // set on completion
	ErrorDetail string         // set on failure
	StartedAt   time.Time
	CompletedAt time.Time
}

// Terminal reports whether the record has reached a terminal status.
func (r Record) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Sink is the narrow persistence interface the Runner writes through. Both
// methods are called frequently and must be idempotent per agent name
// (last-write-wins); failures are logged by the caller and never abort the
// run.
type Sink interface {
	SaveProgress(ctx context.Context, agentName string, percent int, label string, status Status) error
	SaveResult(ctx context.Context, rec Record) error
}

// NopSink discards all writes. Used when a run has no durable storage.
type NopSink struct{}

func (NopSink) SaveProgress(context.Context, string, int, string, Status) error { return nil }
func (NopSink) SaveResult(context.Context, Record) error                        { return nil }
