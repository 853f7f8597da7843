package agents

import (
	"context"
	"testing"

	"auditflow/internal/store"
)

func completedPayload(score float64, grade, analysis string) map[string]any {
	return map[string]any{
		"status":        "completed",
		"score":         score,
		"grade":         grade,
		"analysis_text": analysis,
	}
}

// TestReportAggregatesSections verifies the section average and payload
// assembly over completed analysis results.
func TestReportAggregatesSections(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme", "full")
	st.SetResult(NameSEO, "completed", completedPayload(80, "B+", "Titles fine."))
	st.SetResult(NameMessaging, "completed", completedPayload(60, "C", "Vague hero."))
	st.SetResult(NameConversion, "failed", map[string]any{"status": "failed", "error": "boom"})
	st.SetProfile(map[string]any{"company_name": "Acme"})
	st.SetCompetitors([]store.Competitor{{Name: "Rival", Domain: "rival.example"}})

	res, err := NewReport(st).Run(context.Background(), noProgress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Score != 70 {
		t.Errorf("expected overall 70, got %v", res.Score)
	}
	if res.Grade != "B-" {
		t.Errorf("expected grade B-, got %q", res.Grade)
	}
	if res.Data["overall"] != 70.0 {
		t.Errorf("expected overall in data, got %v", res.Data["overall"])
	}
	profile, _ := res.Data["profile"].(map[string]any)
	if profile["company_name"] != "Acme" {
		t.Errorf("expected profile in report data, got %v", res.Data["profile"])
	}
	competitors, _ := res.Data["competitors"].([]store.Competitor)
	if len(competitors) != 1 {
		t.Errorf("expected competitors in report data, got %v", res.Data["competitors"])
	}
	if _, ok := res.Data["segments"]; ok {
		t.Error("expected no segments without a completed icp result")
	}
}

// TestReportIncludesSegments verifies icp output is attached when present.
func TestReportIncludesSegments(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme", "full")
	st.SetResult(NameSEO, "completed", completedPayload(75, "B", "ok"))
	st.SetResult(NameICP, "completed", map[string]any{
		"status":      "completed",
		"result_data": map[string]any{"segments": []string{"product teams"}},
	})

	res, err := NewReport(st).Run(context.Background(), noProgress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.Data["segments"]; !ok {
		t.Error("expected segments from the icp result")
	}
}

// TestReportFailsWithNoSections verifies the empty-run failure.
func TestReportFailsWithNoSections(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme", "full")
	st.SetResult(NameCrawler, "completed", map[string]any{"status": "completed"})

	if _, err := NewReport(st).Run(context.Background(), noProgress); err == nil {
		t.Error("expected error when no scored section completed")
	}
}
