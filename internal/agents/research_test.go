package agents

import (
	"context"
	"strings"
	"testing"

	"auditflow/internal/store"
)

// TestResearchBuildsProfile verifies name extraction, tagline, social merge
// and sector detection.
func TestResearchBuildsProfile(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "", "full")
	seedPage(st, store.Page{
		URL:             "https://acme.example",
		Title:           "Acme | Usage analytics",
		MetaDescription: "Acme turns events into dashboards.",
		H1:              []string{"Know what your users do"},
		Text:            "Acme is a SaaS platform sold by subscription. Use our API and SDK from the CLI.",
		SocialLinks:     map[string]string{"twitter": "https://twitter.com/acme"},
		PageType:        "home",
	})
	seedPage(st, store.Page{
		URL:         "https://acme.example/about",
		SocialLinks: map[string]string{"linkedin": "https://linkedin.com/company/acme"},
		PageType:    "about",
	})

	res, err := NewResearch(st, nil).Run(context.Background(), noProgress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	profile := st.Profile()
	if profile["company_name"] != "Acme" {
		t.Errorf("expected name stripped from title, got %v", profile["company_name"])
	}
	if profile["tagline"] != "Know what your users do" {
		t.Errorf("unexpected tagline %v", profile["tagline"])
	}
	social, _ := profile["social"].(map[string]string)
	if len(social) != 2 {
		t.Errorf("expected social links merged across pages, got %v", social)
	}

	sectors, _ := profile["sectors"].([]string)
	joined := strings.Join(sectors, ",")
	if !strings.Contains(joined, "saas") || !strings.Contains(joined, "devtools") {
		t.Errorf("expected saas and devtools sectors, got %v", sectors)
	}
	if res.Data["page_count"] != 2 {
		t.Errorf("expected page_count 2, got %v", res.Data["page_count"])
	}
}

// TestCompanyNameFromTitle covers suffix stripping.
func TestCompanyNameFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Acme | Home", "Acme"},
		{"Acme – Dashboards", "Acme"},
		{"Acme - Dashboards", "Acme"},
		{"Acme: Dashboards", "Acme"},
		{"Acme", "Acme"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := companyNameFromTitle(tt.title); got != tt.want {
			t.Errorf("companyNameFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

// TestResearchPrefersConfiguredName verifies an explicit company name wins
// over the page title.
func TestResearchPrefersConfiguredName(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme Inc", "full")
	seedPage(st, store.Page{URL: "https://acme.example", Title: "Something Else", PageType: "home"})

	if _, err := NewResearch(st, nil).Run(context.Background(), noProgress); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := st.Profile()["company_name"]; got != "Acme Inc" {
		t.Errorf("expected configured name, got %v", got)
	}
}

// TestICPDetectsSegments verifies persona signal matching and sector
// passthrough from the profile.
func TestICPDetectsSegments(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme", "full")
	seedPage(st, store.Page{
		URL:      "https://acme.example",
		Text:     "Read the API documentation, grab the SDK, automate your pipeline. Enterprise SSO and compliance built in.",
		PageType: "home",
	})
	st.SetProfile(map[string]any{"sectors": []string{"devtools"}})

	res, err := NewICP(st, nil).Run(context.Background(), noProgress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	sectors, _ := res.Data["sectors"].([]string)
	if len(sectors) != 1 || sectors[0] != "devtools" {
		t.Errorf("expected sectors from profile, got %v", sectors)
	}
	if !strings.Contains(res.Analysis, "developers") {
		t.Errorf("expected developers segment in analysis, got %q", res.Analysis)
	}
	if !strings.Contains(res.Analysis, "enterprise") {
		t.Errorf("expected enterprise segment in analysis, got %q", res.Analysis)
	}
}

// TestICPRequiresPages verifies the empty-store failure.
func TestICPRequiresPages(t *testing.T) {
	st := store.New("run-1", "https://acme.example", "Acme", "full")
	if _, err := NewICP(st, nil).Run(context.Background(), noProgress); err == nil {
		t.Error("expected error with no crawled pages")
	}
}
