package agents

import (
	"context"
	"fmt"

	"auditflow/internal/agent"
	"auditflow/internal/store"
)

// Conversion scores the funnel surface: homepage CTAs, lead-capture forms,
// and the presence of pricing and contact paths.
type Conversion struct {
	st *store.Store
}

// NewConversion creates the conversion agent.
func NewConversion(st *store.Store) *Conversion {
	return &Conversion{st: st}
}

func (a *Conversion) Name() string           { return NameConversion }
func (a *Conversion) DisplayName() string    { return DisplayNames[NameConversion] }
func (a *Conversion) Dependencies() []string { return []string{NameCrawler} }

func (a *Conversion) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	home := a.st.Homepage()
	if home == nil {
		return agent.Result{}, fmt.Errorf("no crawled pages to analyze")
	}

	progress(30, "Checking funnel surface")

	forms := 0
	for _, p := range a.st.Pages() {
		forms += p.FormCount
	}
	hasPricing := len(a.st.PagesByType("pricing")) > 0
	hasContact := len(a.st.PagesByType("contact")) > 0

	score := 0.0
	var recs []agent.Recommendation

	switch {
	case len(home.CTAs) >= 2:
		score += 35
	case len(home.CTAs) == 1:
		score += 25
	default:
		recs = append(recs, agent.Recommendation{
			Title:  "Add a homepage call-to-action",
			Detail: "The homepage offers no CTA; every visit dead-ends.",
			Impact: "High", Effort: "Low",
		})
	}

	if forms > 0 {
		score += 25
	} else {
		recs = append(recs, agent.Recommendation{
			Title:  "Add a lead-capture form",
			Detail: "No forms found on any crawled page.",
			Impact: "High", Effort: "Medium",
		})
	}

	if hasPricing {
		score += 25
	} else {
		recs = append(recs, agent.Recommendation{
			Title:  "Publish a pricing page",
			Detail: "No pricing page found; buyers qualify themselves out when pricing is hidden.",
			Impact: "Medium", Effort: "Medium",
		})
	}

	if hasContact {
		score += 15
	}

	score = clampScore(score)
	return agent.Result{
		Score: score,
		Grade: scoreToGrade(score),
		Analysis: fmt.Sprintf("%d homepage CTAs, %d forms site-wide, pricing page: %t, contact page: %t.",
			len(home.CTAs), forms, hasPricing, hasContact),
		Recommendations: recs,
		Data: map[string]any{
			"homepage_ctas": len(home.CTAs),
			"forms":         forms,
			"has_pricing":   hasPricing,
			"has_contact":   hasContact,
		},
	}, nil
}
