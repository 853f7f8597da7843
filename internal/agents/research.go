package agents

import (
	"context"
	"fmt"
	"strings"

	"auditflow/internal/agent"
	"auditflow/internal/insight"
	"auditflow/internal/store"
)

// sectorKeywords maps sector labels to phrases that indicate them.
var sectorKeywords = map[string][]string{
	"saas":       {"saas", "platform", "subscription", "cloud-based"},
	"devtools":   {"api", "sdk", "developer", "open source", "cli"},
	"ecommerce":  {"shop", "cart", "checkout", "free shipping"},
	"fintech":    {"payments", "banking", "invoice", "compliance"},
	"healthcare": {"patients", "clinic", "hipaa", "health"},
	"agency":     {"clients", "portfolio", "case studies", "our work"},
}

// Research builds the company profile from crawled content: name, tagline,
// social presence and likely sectors. The profile feeds segmentation and
// the final report.
type Research struct {
	st *store.Store
	ic *insight.Client
}

// NewResearch creates the research agent. ic may be nil.
func NewResearch(st *store.Store, ic *insight.Client) *Research {
	return &Research{st: st, ic: ic}
}

func (a *Research) Name() string           { return NameResearch }
func (a *Research) DisplayName() string    { return DisplayNames[NameResearch] }
func (a *Research) Dependencies() []string { return []string{NameCrawler} }

func (a *Research) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	home := a.st.Homepage()
	if home == nil {
		return agent.Result{}, fmt.Errorf("no crawled pages to research")
	}

	progress(20, "Building company profile")

	name := a.st.CompanyName
	if name == "" {
		name = companyNameFromTitle(home.Title)
	}

	tagline := ""
	if len(home.H1) > 0 {
		tagline = home.H1[0]
	}

	social := make(map[string]string)
	for _, p := range a.st.Pages() {
		for platform, url := range p.SocialLinks {
			social[platform] = url
		}
	}

	progress(50, "Detecting sectors")
	text := strings.ToLower(a.st.AllText(50000))
	var sectors []string
	for sector, keywords := range sectorKeywords {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits >= 2 {
			sectors = append(sectors, sector)
		}
	}

	profile := map[string]any{
		"company_name": name,
		"tagline":      tagline,
		"description":  home.MetaDescription,
		"social":       social,
		"sectors":      sectors,
		"page_count":   a.st.PageCount(),
	}
	a.st.SetProfile(profile)

	analysis := fmt.Sprintf("%s — %s. Detected sectors: %s.", name, tagline, strings.Join(sectors, ", "))
	if a.ic != nil {
		progress(75, "Enriching profile")
		enriched, err := a.ic.Complete(ctx,
			fmt.Sprintf("Summarize what this company does and who it sells to.\n%s", a.st.AllText(25000)),
			"You are a B2B market researcher. Answer in two short paragraphs.")
		if err != nil {
			return agent.Result{}, fmt.Errorf("profile enrichment failed: %w", err)
		}
		analysis = enriched
	}

	return agent.Result{
		Analysis: analysis,
		Data:     profile,
	}, nil
}

// companyNameFromTitle strips common title suffixes like "Acme | Home".
func companyNameFromTitle(title string) string {
	for _, sep := range []string{"|", "–", "—", "-", ":"} {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return strings.TrimSpace(title)
}
