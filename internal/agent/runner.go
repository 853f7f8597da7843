package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"auditflow/internal/events"
	"auditflow/internal/store"
)

// RetryPolicy configures per-agent retry behavior. Attempt n sleeps
// RetryDelay * 2^(n-1) before the next try.
type RetryPolicy struct {
	MaxRetries int           // Total attempts (default 3)
	RetryDelay time.Duration // Exponential backoff base (default 2s)
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// Runner wraps an Agent with the uniform execution contract: dependency
// gating, status transitions, retry with cancellable exponential backoff,
// progress publication and persistence. Execute never returns an error for
// agent-internal failures; they end up in the failed Record.
type Runner struct {
	agent  Agent
	store  *store.Store
	bus    *events.Bus
	sink   Sink
	policy RetryPolicy

	mu  sync.Mutex
	rec Record
}

// NewRunner creates a Runner for the given agent. The record starts pending.
// A nil sink is replaced with NopSink.
func NewRunner(a Agent, st *store.Store, bus *events.Bus, sink Sink, policy RetryPolicy) *Runner {
	if sink == nil {
		sink = NopSink{}
	}
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = 3
	}
	if policy.RetryDelay <= 0 {
		policy.RetryDelay = 2 * time.Second
	}
	return &Runner{
		agent:  a,
		store:  st,
		bus:    bus,
		sink:   sink,
		policy: policy,
		rec: Record{
			Name:   a.Name(),
			Status: StatusPending,
		},
	}
}

// Name returns the wrapped agent's name.
func (r *Runner) Name() string { return r.agent.Name() }

// Dependencies returns the wrapped agent's declared dependency names.
func (r *Runner) Dependencies() []string { return r.agent.Dependencies() }

// Record returns a snapshot of the agent's current record.
func (r *Runner) Record() Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec
}

// CanRun reports whether every declared dependency has a completed result in
// the context store. Side-effect free.
func (r *Runner) CanRun() bool {
	for _, dep := range r.agent.Dependencies() {
		res, ok := r.store.Result(dep)
		if !ok || res.Status != string(StatusCompleted) {
			return false
		}
	}
	return true
}

// UpdateProgress clamps percent to 100, applies it monotonically to the
// record, publishes a progress event and best-effort persists. Safe for the
// agent's work function to call at any point during Run.
func (r *Runner) UpdateProgress(percent int, label string) {
	if percent > 100 {
		percent = 100
	}

	r.mu.Lock()
	if percent > r.rec.Progress {
		r.rec.Progress = percent
	}
	if label != "" {
		r.rec.CurrentTask = label
	}
	pct := r.rec.Progress
	lbl := r.rec.CurrentTask
	status := r.rec.Status
	r.mu.Unlock()

	r.bus.Publish(events.Progress(r.agent.Name(), pct, lbl))

	if err := r.sink.SaveProgress(context.Background(), r.agent.Name(), pct, lbl, status); err != nil {
		log.Printf("WARNING: [%s] failed to persist progress: %v", r.agent.Name(), err)
	}
}

// Execute runs the agent to a terminal state and returns the final record.
// Agent-internal errors are retried with exponential backoff and, once
// retries are exhausted, captured in a failed record; they never propagate
// to the caller. Context cancellation interrupts backoff sleeps and in-
// flight work and is recorded as a failure with a "cancelled" detail.
func (r *Runner) Execute(ctx context.Context) Record {
	name := r.agent.Name()

	r.mu.Lock()
	if r.rec.Terminal() {
		rec := r.rec
		r.mu.Unlock()
		return rec
	}
	r.rec.Status = StatusRunning
	r.rec.StartedAt = time.Now().UTC()
	r.mu.Unlock()

	if err := r.sink.SaveProgress(ctx, name, 0, "", StatusRunning); err != nil {
		log.Printf("WARNING: [%s] failed to persist start: %v", name, err)
	}
	r.UpdateProgress(0, "Starting "+r.agent.DisplayName())

	var result Result
	attempt := 0
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attempt++
		res, err := r.runOnce(ctx)
		if err != nil {
			log.Printf("ERROR: [%s] attempt %d/%d failed: %v", name, attempt, r.policy.MaxRetries, err)
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}

		result = res
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.policy.RetryDelay
	policy.Multiplier = 2.0
	policy.RandomizationFactor = 0
	policy.MaxInterval = 5 * time.Minute
	policy.MaxElapsedTime = 0 // bounded by retry count, not wall time

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.policy.MaxRetries-1)), ctx))
	if err != nil {
		return r.fail(ctx, err)
	}
	return r.complete(ctx, result)
}

// runOnce invokes the agent's work function once, converting panics into
// errors so that a misbehaving agent rides the normal retry path.
func (r *Runner) runOnce(ctx context.Context) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("agent panic: %v", p)
		}
	}()
	return r.agent.Run(ctx, r.UpdateProgress)
}

func (r *Runner) complete(ctx context.Context, result Result) Record {
	name := r.agent.Name()
	payload := result.payload(string(StatusCompleted))

	r.mu.Lock()
	r.rec.Status = StatusCompleted
	r.rec.Progress = 100
	r.rec.CurrentTask = "Complete"
	r.rec.Payload = payload
	r.rec.CompletedAt = time.Now().UTC()
	rec := r.rec
	r.mu.Unlock()

	r.store.SetResult(name, string(StatusCompleted), payload)

	if err := r.sink.SaveResult(ctx, rec); err != nil {
		log.Printf("WARNING: [%s] failed to persist result: %v", name, err)
	}

	r.bus.Publish(events.Progress(name, 100, "Complete"))
	r.bus.Publish(events.Completed(name, payload))
	log.Printf("[%s] completed", name)
	return rec
}

func (r *Runner) fail(ctx context.Context, lastErr error) Record {
	name := r.agent.Name()

	detail := lastErr.Error()
	if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) || ctx.Err() != nil {
		detail = fmt.Sprintf("cancelled: %v", lastErr)
	}

	payload := map[string]any{
		"status": string(StatusFailed),
		"error":  detail,
	}

	r.mu.Lock()
	r.rec.Status = StatusFailed
	r.rec.ErrorDetail = detail
	r.rec.Payload = payload
	r.rec.CompletedAt = time.Now().UTC()
	rec := r.rec
	r.mu.Unlock()

	r.store.SetResult(name, string(StatusFailed), payload)

	if err := r.sink.SaveResult(context.Background(), rec); err != nil {
		log.Printf("WARNING: [%s] failed to persist result: %v", name, err)
	}

	r.bus.Publish(events.Failed(name, detail))
	log.Printf("ERROR: [%s] failed after %d attempts: %s", name, r.policy.MaxRetries, detail)
	return rec
}
