// Package agent defines the uniform execution contract every audit agent
// implements, and the Runner decorator that wraps an agent's work with
// status transitions, retry with backoff, progress publication and
// persistence.
package agent

import (
	"context"
)

// ProgressFunc reports work-in-progress. percent is clamped to 100 and
// applied monotonically; an empty label keeps the previous one.
type ProgressFunc func(percent int, label string)

// Agent is a single unit of audit work. Implementations declare a unique
// name, the names of agents that must complete before they can run, and the
// work itself. Run must be safe to invoke more than once: retries re-invoke
// it from scratch.
type Agent interface {
	Name() string
	DisplayName() string
	Dependencies() []string
	Run(ctx context.Context, progress ProgressFunc) (Result, error)
}

// Recommendation is one actionable suggestion produced by an agent.
type Recommendation struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Impact string `json:"impact"` // High, Medium, Low
	Effort string `json:"effort"` // High, Medium, Low
}

// Result is the structured output of a successful agent run. Collector
// agents leave Score and Grade zero-valued; scored analysis agents fill
// every field.
type Result struct {
	Score           float64
	Grade           string
	Analysis        string
	Recommendations []Recommendation
	Data            map[string]any
}

// payload flattens a Result into the opaque payload stored, persisted and
// published on completion.
func (r Result) payload(status string) map[string]any {
	return map[string]any{
		"status":          status,
		"score":           r.Score,
		"grade":           r.Grade,
		"analysis_text":   r.Analysis,
		"recommendations": r.Recommendations,
		"result_data":     r.Data,
	}
}
