package orchestrator

import (
	"errors"
	"sort"

	"auditflow/internal/agent"
)

// ErrNoResults marks a run in which not a single agent produced a usable
// result. Callers must treat this as a harder failure than a run with some
// failed agents.
var ErrNoResults = errors.New("no agents produced results")

// Summary aggregates terminal records after a run.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	Pending   int
	Records   []agent.Record
}

// Summary returns the current run summary, records sorted by agent name.
func (p *Pipeline) Summary() Summary {
	s := Summary{Records: p.Records()}
	sort.Slice(s.Records, func(i, j int) bool { return s.Records[i].Name < s.Records[j].Name })

	for _, rec := range s.Records {
		s.Total++
		switch rec.Status {
		case agent.StatusCompleted:
			s.Completed++
		case agent.StatusFailed:
			s.Failed++
		default:
			s.Pending++
		}
	}
	return s
}

// Err distinguishes the empty run from partial success: it returns
// ErrNoResults when agents were registered but none completed, and nil
// otherwise.
func (s Summary) Err() error {
	if s.Total > 0 && s.Completed == 0 {
		return ErrNoResults
	}
	return nil
}
