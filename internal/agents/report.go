package agents

import (
	"context"
	"fmt"

	"auditflow/internal/agent"
	"auditflow/internal/store"
)

// Report aggregates every completed analysis result into the final report
// payload. It declares no dependencies and relies on phase ordering instead,
// so a partially failed run still yields a report over whatever completed.
// It fails only when no scored section completed at all.
type Report struct {
	st *store.Store
}

// NewReport creates the report agent.
func NewReport(st *store.Store) *Report {
	return &Report{st: st}
}

func (a *Report) Name() string           { return NameReport }
func (a *Report) DisplayName() string    { return DisplayNames[NameReport] }
func (a *Report) Dependencies() []string { return nil }

func (a *Report) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	progress(10, "Collecting section results")

	type section struct {
		Agent    string  `json:"agent"`
		Display  string  `json:"display_name"`
		Score    float64 `json:"score"`
		Grade    string  `json:"grade"`
		Analysis string  `json:"analysis"`
		Recs     any     `json:"recommendations,omitempty"`
	}

	var sections []section
	var total float64
	for i, name := range ScoredAgents {
		progress(10+70*i/len(ScoredAgents), "Scoring "+DisplayNames[name])

		res, ok := a.st.Result(name)
		if !ok || res.Status != "completed" {
			continue
		}
		score, _ := res.Payload["score"].(float64)
		grade, _ := res.Payload["grade"].(string)
		analysis, _ := res.Payload["analysis_text"].(string)

		sections = append(sections, section{
			Agent:    name,
			Display:  DisplayNames[name],
			Score:    score,
			Grade:    grade,
			Analysis: analysis,
			Recs:     res.Payload["recommendations"],
		})
		total += score
	}

	if len(sections) == 0 {
		return agent.Result{}, fmt.Errorf("no completed analysis sections to report on")
	}

	overall := total / float64(len(sections))

	progress(90, "Assembling report")
	data := map[string]any{
		"company_url": a.st.CompanyURL,
		"run_mode":    a.st.RunMode,
		"overall":     overall,
		"grade":       scoreToGrade(overall),
		"sections":    sections,
		"profile":     a.st.Profile(),
		"competitors": a.st.Competitors(),
		"pages":       a.st.PageCount(),
	}
	if icp, ok := a.st.Result(NameICP); ok && icp.Status == "completed" {
		data["segments"] = icp.Payload["result_data"]
	}

	return agent.Result{
		Score: overall,
		Grade: scoreToGrade(overall),
		Analysis: fmt.Sprintf("Overall score %.1f (%s) across %d sections.",
			overall, scoreToGrade(overall), len(sections)),
		Data: data,
	}, nil
}
