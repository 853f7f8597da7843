package agents

import (
	"context"
	"fmt"
	"strings"

	"auditflow/internal/agent"
	"auditflow/internal/insight"
	"auditflow/internal/store"
)

// valueWords signal benefit-led copy in a hero headline.
var valueWords = []string{
	"faster", "save", "grow", "automate", "simple", "easy", "without",
	"in minutes", "free", "secure", "scale", "boost",
}

// Messaging scores positioning clarity: the hero headline, benefit
// language, homepage calls-to-action and social proof.
type Messaging struct {
	st *store.Store
	ic *insight.Client
}

// NewMessaging creates the messaging agent. ic may be nil.
func NewMessaging(st *store.Store, ic *insight.Client) *Messaging {
	return &Messaging{st: st, ic: ic}
}

func (a *Messaging) Name() string        { return NameMessaging }
func (a *Messaging) DisplayName() string { return DisplayNames[NameMessaging] }

// Messaging reads hero captures, so it depends on the capture agent as well
// as the crawl itself.
func (a *Messaging) Dependencies() []string { return []string{NameCrawler, NameCapture} }

func (a *Messaging) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	home := a.st.Homepage()
	if home == nil {
		return agent.Result{}, fmt.Errorf("no crawled pages to analyze")
	}

	progress(25, "Evaluating hero messaging")

	heroes := a.st.CapturesByKind("hero")
	hero := ""
	for _, c := range heroes {
		if c.URL == home.URL {
			hero = c.Content
			break
		}
	}
	headline := ""
	if len(home.H1) > 0 {
		headline = home.H1[0]
	}

	score := 0.0
	var recs []agent.Recommendation

	if headline != "" {
		score += 30
		if len(headline) <= 80 {
			score += 10
		} else {
			recs = append(recs, agent.Recommendation{
				Title:  "Shorten the hero headline",
				Detail: fmt.Sprintf("The homepage H1 is %d characters; 80 or fewer reads better above the fold.", len(headline)),
				Impact: "Medium", Effort: "Low",
			})
		}
	} else {
		recs = append(recs, agent.Recommendation{
			Title:  "Add a hero headline",
			Detail: "The homepage has no H1; visitors get no immediate statement of what the product does.",
			Impact: "High", Effort: "Low",
		})
	}

	lower := strings.ToLower(headline + " " + hero)
	for _, w := range valueWords {
		if strings.Contains(lower, w) {
			score += 20
			break
		}
	}

	if len(home.CTAs) > 0 {
		score += 20
	} else {
		recs = append(recs, agent.Recommendation{
			Title:  "Add a primary call-to-action",
			Detail: "No recognizable CTA found on the homepage.",
			Impact: "High", Effort: "Low",
		})
	}

	testimonials := 0
	for _, p := range a.st.Pages() {
		testimonials += len(p.Testimonials)
	}
	if testimonials > 0 {
		score += 20
	} else {
		recs = append(recs, agent.Recommendation{
			Title:  "Add social proof",
			Detail: "No testimonials or customer quotes found on any crawled page.",
			Impact: "Medium", Effort: "Medium",
		})
	}

	score = clampScore(score)
	analysis := fmt.Sprintf("Headline: %q. %d homepage CTAs, %d testimonials across the site.",
		headline, len(home.CTAs), testimonials)
	if a.ic != nil {
		progress(75, "Writing messaging narrative")
		enriched, err := a.ic.Complete(ctx,
			fmt.Sprintf("Assess this company's positioning and messaging clarity.\n%s", a.st.AllText(25000)),
			"You are a positioning consultant. Critique the messaging directly.")
		if err != nil {
			return agent.Result{}, fmt.Errorf("messaging narrative failed: %w", err)
		}
		analysis = enriched
	}

	return agent.Result{
		Score:           score,
		Grade:           scoreToGrade(score),
		Analysis:        analysis,
		Recommendations: recs,
		Data: map[string]any{
			"headline":     headline,
			"ctas":         len(home.CTAs),
			"testimonials": testimonials,
		},
	}, nil
}
