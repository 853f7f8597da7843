package agents

import (
	"context"
	"fmt"
	"strings"

	"auditflow/internal/agent"
	"auditflow/internal/insight"
	"auditflow/internal/store"
)

// personaSignals maps candidate customer segments to phrases that indicate
// the site is speaking to them.
var personaSignals = map[string][]string{
	"developers":       {"api", "sdk", "documentation", "integrate", "cli"},
	"marketing teams":  {"campaigns", "conversion", "leads", "brand", "audience"},
	"sales teams":      {"pipeline", "crm", "quota", "deals", "prospects"},
	"enterprise":       {"enterprise", "sso", "compliance", "security", "sla"},
	"small businesses": {"small business", "affordable", "easy to use", "no code"},
	"startups":         {"startup", "founders", "scale", "launch"},
}

// ICP derives ideal-customer-profile segments from the company profile and
// page language. It is the one agent gated on two upstream phases.
type ICP struct {
	st *store.Store
	ic *insight.Client
}

// NewICP creates the segmentation agent. ic may be nil.
func NewICP(st *store.Store, ic *insight.Client) *ICP {
	return &ICP{st: st, ic: ic}
}

func (a *ICP) Name() string           { return NameICP }
func (a *ICP) DisplayName() string    { return DisplayNames[NameICP] }
func (a *ICP) Dependencies() []string { return []string{NameCrawler, NameResearch} }

func (a *ICP) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	if a.st.PageCount() == 0 {
		return agent.Result{}, fmt.Errorf("no crawled pages to analyze")
	}

	progress(30, "Matching audience signals")

	text := strings.ToLower(a.st.AllText(50000))
	type segment struct {
		Name    string   `json:"name"`
		Signals []string `json:"signals"`
	}
	var segments []segment
	for persona, signals := range personaSignals {
		var hits []string
		for _, s := range signals {
			if strings.Contains(text, s) {
				hits = append(hits, s)
			}
		}
		if len(hits) >= 2 {
			segments = append(segments, segment{Name: persona, Signals: hits})
		}
	}

	profile := a.st.Profile()
	sectors, _ := profile["sectors"].([]string)

	names := make([]string, 0, len(segments))
	for _, s := range segments {
		names = append(names, s.Name)
	}

	analysis := fmt.Sprintf("Site language targets: %s. Sectors from research: %s.",
		strings.Join(names, ", "), strings.Join(sectors, ", "))
	if a.ic != nil {
		progress(70, "Drafting segment profiles")
		enriched, err := a.ic.Complete(ctx,
			fmt.Sprintf("Describe the ideal customer profiles for this company.\n%s", a.st.AllText(25000)),
			"You are a go-to-market strategist. Name 2-3 segments with firmographics.")
		if err != nil {
			return agent.Result{}, fmt.Errorf("segment drafting failed: %w", err)
		}
		analysis = enriched
	}

	return agent.Result{
		Analysis: analysis,
		Data: map[string]any{
			"segments": segments,
			"sectors":  sectors,
		},
	}, nil
}
