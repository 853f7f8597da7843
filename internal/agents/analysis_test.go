package agents

import (
	"context"
	"strings"
	"testing"

	"auditflow/internal/store"
)

func seedPage(st *store.Store, p store.Page) {
	st.SetPage(&p)
}

// TestSEOScoring verifies the on-page heuristics reward a well-formed site
// and punish a bare one.
func TestSEOScoring(t *testing.T) {
	good := store.New("run-1", "https://acme.example", "Acme", "full")
	seedPage(good, store.Page{
		URL:             "https://acme.example/",
		Title:           "Acme Analytics | Dashboards for product teams",
		MetaDescription: strings.Repeat("Dashboards for teams. ", 5),
		H1:              []string{"Welcome"},
		HasSchema:       true,
		InternalLinks:   []string{"a", "b", "c", "d", "e"},
	})

	res, err := NewSEO(good, nil).Run(context.Background(), noProgress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Score != 100 {
		t.Errorf("expected perfect page to score 100, got %v", res.Score)
	}
	if res.Grade != "A+" {
		t.Errorf("expected A+, got %q", res.Grade)
	}
	if len(res.Recommendations) != 0 {
		t.Errorf("expected no recommendations for a perfect page, got %v", res.Recommendations)
	}

	bare := store.New("run-1", "https://acme.example", "Acme", "full")
	seedPage(bare, store.Page{URL: "https://acme.example/"})

	res, err = NewSEO(bare, nil).Run(context.Background(), noProgress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Score != 0 {
		t.Errorf("expected bare page to score 0, got %v", res.Score)
	}
	if len(res.Recommendations) == 0 {
		t.Error("expected recommendations for a bare page")
	}
}

// TestSEORequiresPages verifies the empty-store failure.
func TestSEORequiresPages(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme", "full")
	if _, err := NewSEO(st, nil).Run(context.Background(), noProgress); err == nil {
		t.Error("expected error with no crawled pages")
	}
}

// TestCompetitorRanking verifies outbound domains are ranked by frequency
// with infrastructure and social hosts filtered out.
func TestCompetitorRanking(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme", "full")
	seedPage(st, store.Page{
		URL: "https://acme.example/",
		ExternalLinks: []string{
			"https://rival.example/pricing",
			"https://rival.example/features",
			"https://other.example/",
			"https://fonts.googleapis.com/css",
			"https://cdn.example/lib.js",
			"https://twitter.com/acme",
			"https://www.acme.example/self",
		},
		PageType: "home",
	})
	seedPage(st, store.Page{
		URL:           "https://acme.example/compare/acme-vs-rival",
		ExternalLinks: []string{"https://rival.example/"},
		PageType:      "comparison",
	})

	res, err := NewCompetitor(st).Run(context.Background(), noProgress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	competitors := st.Competitors()
	if len(competitors) != 2 {
		t.Fatalf("expected 2 competitors, got %v", competitors)
	}
	if competitors[0].Domain != "rival.example" {
		t.Errorf("expected most-linked domain first, got %q", competitors[0].Domain)
	}
	if competitors[1].Domain != "other.example" {
		t.Errorf("expected other.example second, got %q", competitors[1].Domain)
	}

	// Base 40 + comparison page 40 + competitors found 20.
	if res.Score != 100 {
		t.Errorf("expected score 100, got %v", res.Score)
	}
	if res.Data["comparison_pages"] != 1 {
		t.Errorf("expected 1 comparison page, got %v", res.Data["comparison_pages"])
	}
}

// TestCompetitorWithoutSignals verifies the floor score when nothing is
// found.
func TestCompetitorWithoutSignals(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme", "full")
	seedPage(st, store.Page{URL: "https://acme.example/", PageType: "home"})

	res, err := NewCompetitor(st).Run(context.Background(), noProgress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Score != 40 {
		t.Errorf("expected floor score 40, got %v", res.Score)
	}
	if len(res.Recommendations) == 0 {
		t.Error("expected a comparison-page recommendation")
	}
}

// TestIsInfrastructureHost covers the noise filter.
func TestIsInfrastructureHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"fonts.googleapis.com", true},
		{"cdn.rival.example", true},
		{"twitter.com", true},
		{"stripe.com", true},
		{"rival.example", false},
	}
	for _, tt := range tests {
		if got := isInfrastructureHost(tt.host); got != tt.want {
			t.Errorf("isInfrastructureHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
